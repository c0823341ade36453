package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"gorm.io/gorm"
)

func TestKnowledge_SoftDeleteVisibility(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)
	ctx := context.Background()

	doc, err := repo.AddDocument(ctx, tenant.ID, "hours.txt", "Mon-Fri 8-18")
	require.NoError(t, err)

	active, err := repo.ListActive(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, doc.ID, active[0].ID)

	require.NoError(t, repo.SoftDelete(ctx, tenant.ID, doc.ID))

	active, err = repo.ListActive(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	history, err := repo.History(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, doc.ID, history[0].ID)
	assert.False(t, history[0].IsActive)
	assert.NotNil(t, history[0].DeactivatedAt)

	// idempotent, no second event
	require.NoError(t, repo.SoftDelete(ctx, tenant.ID, doc.ID))

	events, err := repo.Events(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.KnowledgeAdded, events[0].Action)
	assert.Equal(t, model.KnowledgeDeactivated, events[1].Action)
	assert.Equal(t, doc.ID, events[1].DocumentID)
}

func TestKnowledge_SoftDeleteScopedToTenant(t *testing.T) {
	db, tenant := setup(t)
	other := newTenant(t, db, "tenant-b")
	repo := NewKnowledgeRepository(db)
	ctx := context.Background()

	doc, err := repo.AddDocument(ctx, tenant.ID, "prices.pdf", "Cleaning: 80 EUR")
	require.NoError(t, err)

	err = repo.SoftDelete(ctx, other.ID, doc.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = repo.SoftDelete(ctx, tenant.ID, 9999)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	active, err := repo.ListActive(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestKnowledge_AddDocument(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)
	ctx := context.Background()

	t.Run("placeholder text is stored as given", func(t *testing.T) {
		doc, err := repo.AddDocument(ctx, tenant.ID, "scan.png", "[extraction failed]")
		require.NoError(t, err)
		assert.True(t, doc.IsActive)
		assert.Equal(t, "[extraction failed]", doc.RawText)
	})

	t.Run("rejects reserved and blank names", func(t *testing.T) {
		_, err := repo.AddDocument(ctx, tenant.ID, model.TrustedSourcesFileName, "[]")
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = repo.AddDocument(ctx, tenant.ID, "   ", "text")
		assert.ErrorIs(t, err, apperror.ErrValidation)

		_, err = repo.AddDocument(ctx, 0, "a.txt", "text")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("many documents active at once, oldest first", func(t *testing.T) {
		_, err := repo.AddDocument(ctx, tenant.ID, "second.txt", "two")
		require.NoError(t, err)

		active, err := repo.ListActive(ctx, tenant.ID)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "scan.png", active[0].FileName)
		assert.Equal(t, "second.txt", active[1].FileName)
	})
}

func TestKnowledge_TrustedSources(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)
	ctx := context.Background()

	urls, err := repo.GetTrustedSources(ctx, tenant.ID)
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)

	stored, err := repo.UpsertTrustedSources(ctx, tenant.ID, []string{"https://example.com", "not a url"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, stored)

	urls, err = repo.GetTrustedSources(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, urls)

	// Updated in place, order kept, duplicates kept
	stored, err = repo.UpsertTrustedSources(ctx, tenant.ID, []string{"https://b.example", "ftp://files.example/x", "https://b.example", "/relative"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b.example", "ftp://files.example/x", "https://b.example"}, stored)

	var records []model.KnowledgeDocument
	require.NoError(t, db.Where("tenant_id = ? AND file_name = ?", tenant.ID, model.TrustedSourcesFileName).Find(&records).Error)
	assert.Len(t, records, 1)

	// The record never shows up as a document
	active, err := repo.ListActive(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	events, err := repo.Events(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.KnowledgeTrustedSourcesCreated, events[0].Action)
	assert.Equal(t, model.KnowledgeTrustedSourcesUpdated, events[1].Action)
}

func activeTrustedCount(t *testing.T, db *gorm.DB, tenantID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.KnowledgeDocument{}).
		Where("tenant_id = ? AND is_active = ? AND file_name = ?", tenantID, true, model.TrustedSourcesFileName).
		Count(&n).Error)
	return n
}

func TestKnowledge_ConcurrentTrustedSourcesKeepOneRecord(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.UpsertTrustedSources(ctx, tenant.ID, []string{"https://example.com"})
			if err != nil {
				assert.ErrorIs(t, err, apperror.ErrVersionConflict)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, activeTrustedCount(t, db, tenant.ID))
	urls, err := repo.GetTrustedSources(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, urls)
}

func TestKnowledge_TrustedSourcesLostInsertIsConflict(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)
	ctx := context.Background()

	// Another writer creates the record between our lookup and our insert
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:race_trusted", func(tx *gorm.DB) {
		doc, ok := tx.Statement.Dest.(*model.KnowledgeDocument)
		if !ok || !doc.IsTrustedSources() || raced {
			return
		}
		raced = true
		tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Create(&model.KnowledgeDocument{
			TenantID: doc.TenantID,
			FileName: model.TrustedSourcesFileName,
			RawText:  `["https://other.example"]`,
			IsActive: true,
		}).Error)
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove("test:race_trusted") })

	_, err := repo.UpsertTrustedSources(ctx, tenant.ID, []string{"https://example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrVersionConflict)
	assert.True(t, raced)

	// the retry sees a clean slate and succeeds
	stored, err := repo.UpsertTrustedSources(ctx, tenant.ID, []string{"https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, stored)
	assert.EqualValues(t, 1, activeTrustedCount(t, db, tenant.ID))
}

func TestKnowledge_TrustedSourcesAllInvalid(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)

	stored, err := repo.UpsertTrustedSources(context.Background(), tenant.ID, []string{"nope", ""})
	require.NoError(t, err)
	assert.Empty(t, stored)

	urls, err := repo.GetTrustedSources(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestKnowledge_CorruptTrustedSourcesRecord(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)

	require.NoError(t, db.Create(&model.KnowledgeDocument{
		TenantID: tenant.ID,
		FileName: model.TrustedSourcesFileName,
		RawText:  "{not json",
		IsActive: true,
	}).Error)

	_, err := repo.GetTrustedSources(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, apperror.ErrInternal)
}

func TestKnowledge_StorageFailureIsUnavailable(t *testing.T) {
	db, tenant := setup(t)
	repo := NewKnowledgeRepository(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.ListActive(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, apperror.ErrConfigurationUnavailable)

	_, err = repo.GetTrustedSources(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, apperror.ErrConfigurationUnavailable)
}

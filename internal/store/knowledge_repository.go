package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/suteetoe/receptionist/internal/apperror"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/pkg/logger"
	"github.com/suteetoe/receptionist/pkg/metrics"
	"github.com/suteetoe/receptionist/pkg/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// KnowledgeRepository stores tenant reference documents and the trusted
// sources record. Rows are soft-deleted only and every write is logged to
// knowledge_events in the same transaction.
type KnowledgeRepository struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// ListActive returns the tenant's active documents, oldest first. The trusted
// sources record is not included.
func (r *KnowledgeRepository) ListActive(ctx context.Context, tenantID uint) ([]model.KnowledgeDocument, error) {
	const op = "store.ListActive"
	defer metrics.TrackDBOperation("knowledge_list_active")(time.Now())

	var docs []model.KnowledgeDocument
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND file_name <> ?", tenantID, true, model.TrustedSourcesFileName).
		Order("id ASC").
		Find(&docs).Error; err != nil {
		return nil, apperror.Unavailable(op, err)
	}
	return docs, nil
}

// History returns every document row of the tenant, inactive ones included
func (r *KnowledgeRepository) History(ctx context.Context, tenantID uint) ([]model.KnowledgeDocument, error) {
	const op = "store.KnowledgeHistory"

	var docs []model.KnowledgeDocument
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&docs).Error; err != nil {
		return nil, apperror.Unavailable(op, err)
	}
	return docs, nil
}

// Events returns the tenant's knowledge audit log, oldest first
func (r *KnowledgeRepository) Events(ctx context.Context, tenantID uint) ([]model.KnowledgeEvent, error) {
	const op = "store.KnowledgeEvents"

	var events []model.KnowledgeEvent
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, apperror.Unavailable(op, err)
	}
	return events, nil
}

// GetTrustedSources returns the URLs of the active trusted sources record,
// or an empty list when the tenant has none.
func (r *KnowledgeRepository) GetTrustedSources(ctx context.Context, tenantID uint) ([]string, error) {
	const op = "store.GetTrustedSources"
	defer metrics.TrackDBOperation("knowledge_get_trusted_sources")(time.Now())

	var record model.KnowledgeDocument
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND file_name = ?", tenantID, true, model.TrustedSourcesFileName).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, apperror.Unavailable(op, err)
	}

	urls, err := decodeURLs(record.RawText)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}
	return urls, nil
}

// UpsertTrustedSources stores the valid absolute URLs from urls, in order and
// without deduplication. Invalid entries are dropped. The active record is
// updated in place, or created when missing. It returns the stored list.
func (r *KnowledgeRepository) UpsertTrustedSources(ctx context.Context, tenantID uint, urls []string) ([]string, error) {
	const op = "store.UpsertTrustedSources"
	log := logger.FromContext(ctx)
	defer metrics.TrackDBOperation("knowledge_upsert_trusted_sources")(time.Now())

	if tenantID == 0 {
		return nil, apperror.Validation(op, "tenant id is required")
	}

	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if !validation.IsAbsoluteURL(u) {
			log.Debug("Dropping invalid trusted source", zap.String("url", raw))
			continue
		}
		valid = append(valid, u)
	}

	encoded, err := json.Marshal(valid)
	if err != nil {
		return nil, apperror.Internal(op, err)
	}

	var action model.KnowledgeAction
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.KnowledgeDocument
		err := tx.Where("tenant_id = ? AND is_active = ? AND file_name = ?", tenantID, true, model.TrustedSourcesFileName).
			Take(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = model.KnowledgeDocument{
				TenantID: tenantID,
				FileName: model.TrustedSourcesFileName,
				RawText:  string(encoded),
				IsActive: true,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			action = model.KnowledgeTrustedSourcesCreated
		case err != nil:
			return err
		default:
			if err := tx.Model(&record).Update("raw_text", string(encoded)).Error; err != nil {
				return err
			}
			action = model.KnowledgeTrustedSourcesUpdated
		}
		return appendEvent(tx, tenantID, record.ID, action)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Warn("Trusted sources write lost a race", zap.Uint("tenant_id", tenantID))
		return nil, apperror.Conflict(op, "trusted sources were changed concurrently")
	}
	if err != nil {
		log.Error("Failed to store trusted sources", zap.Uint("tenant_id", tenantID), zap.Error(err))
		return nil, apperror.Unavailable(op, err)
	}

	metrics.RecordKnowledgeOperation(string(action))
	log.Info("Trusted sources stored",
		zap.Uint("tenant_id", tenantID),
		zap.Int("submitted", len(urls)),
		zap.Int("stored", len(valid)))
	return valid, nil
}

// AddDocument inserts an active document. rawText is stored as given; it may
// be a placeholder when extraction failed upstream.
func (r *KnowledgeRepository) AddDocument(ctx context.Context, tenantID uint, fileName, rawText string) (*model.KnowledgeDocument, error) {
	const op = "store.AddDocument"
	log := logger.FromContext(ctx)
	defer metrics.TrackDBOperation("knowledge_add_document")(time.Now())

	fileName = strings.TrimSpace(fileName)
	switch {
	case tenantID == 0:
		return nil, apperror.Validation(op, "tenant id is required")
	case fileName == "":
		return nil, apperror.Validation(op, "file name is required")
	case fileName == model.TrustedSourcesFileName:
		return nil, apperror.Validation(op, "file name %q is reserved", fileName)
	case len(fileName) > 255:
		return nil, apperror.Validation(op, "file name must be at most 255 characters")
	}

	doc := model.KnowledgeDocument{
		TenantID: tenantID,
		FileName: fileName,
		RawText:  rawText,
		IsActive: true,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return err
		}
		return appendEvent(tx, tenantID, doc.ID, model.KnowledgeAdded)
	})
	if err != nil {
		log.Error("Failed to add document",
			zap.Uint("tenant_id", tenantID),
			zap.String("file_name", fileName),
			zap.Error(err))
		return nil, apperror.Unavailable(op, err)
	}

	metrics.RecordKnowledgeOperation(string(model.KnowledgeAdded))
	log.Info("Document added",
		zap.Uint("tenant_id", tenantID),
		zap.Uint("document_id", doc.ID),
		zap.String("file_name", fileName))
	return &doc, nil
}

// SoftDelete deactivates a document of the tenant. The row is kept. Deleting
// an already inactive document is a no-op.
func (r *KnowledgeRepository) SoftDelete(ctx context.Context, tenantID, documentID uint) error {
	const op = "store.SoftDelete"
	log := logger.FromContext(ctx)
	defer metrics.TrackDBOperation("knowledge_soft_delete")(time.Now())

	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc model.KnowledgeDocument
		err := tx.Where("id = ? AND tenant_id = ?", documentID, tenantID).Take(&doc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound(op, "document %d not found", documentID)
		}
		if err != nil {
			return err
		}
		if !doc.IsActive {
			return nil
		}

		now := time.Now()
		if err := tx.Model(&doc).Updates(map[string]interface{}{
			"is_active":      false,
			"deactivated_at": &now,
		}).Error; err != nil {
			return err
		}
		changed = true
		return appendEvent(tx, tenantID, doc.ID, model.KnowledgeDeactivated)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		log.Error("Failed to deactivate document",
			zap.Uint("tenant_id", tenantID),
			zap.Uint("document_id", documentID),
			zap.Error(err))
		return apperror.Unavailable(op, err)
	}

	if changed {
		metrics.RecordKnowledgeOperation(string(model.KnowledgeDeactivated))
		log.Info("Document deactivated",
			zap.Uint("tenant_id", tenantID),
			zap.Uint("document_id", documentID))
	}
	return nil
}

func appendEvent(tx *gorm.DB, tenantID, documentID uint, action model.KnowledgeAction) error {
	return tx.Create(&model.KnowledgeEvent{
		TenantID:   tenantID,
		DocumentID: documentID,
		Action:     action,
	}).Error
}

func decodeURLs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

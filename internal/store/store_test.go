package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suteetoe/receptionist/internal/model"
	"github.com/suteetoe/receptionist/pkg/database/databasetest"
	"gorm.io/gorm"
)

func newTenant(t *testing.T, db *gorm.DB, externalID string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{ExternalID: externalID, Name: externalID}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func setup(t *testing.T) (*gorm.DB, *model.Tenant) {
	t.Helper()
	db := databasetest.OpenTestDB(t)
	return db, newTenant(t, db, "tenant-a")
}

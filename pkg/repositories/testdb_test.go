package repositories

import (
	"path/filepath"
	"testing"

	"github.com/G-studio-design/aplikasi-notify/pkg/database"
	"github.com/G-studio-design/aplikasi-notify/pkg/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "notify.db") + "?_pragma=busy_timeout(5000)"
	db, err := database.InitDB(dsn)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := database.MigrateDB(db, &models.Notification{}, &models.PushSubscription{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/domain/models"
	"taskboard/infrastructure/postgres"
)

// NewTestDB opens a private in-memory sqlite database with the board schema.
// The connection is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// SeedUser inserts a user row and returns it
func SeedUser(t *testing.T, db *gorm.DB, username string, role models.Role, active bool) *models.User {
	t.Helper()

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
		IsActive: active,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// SeedTask inserts a plain task owned by creator
func SeedTask(t *testing.T, db *gorm.DB, title string, creator uuid.UUID, status models.TaskStatus) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		Status:     status,
		Priority:   models.PriorityMedium,
		Complexity: models.ComplexityMedium,
		Deadline:   time.Now().Add(72 * time.Hour).UTC(),
		CreatorID:  creator,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
	return task
}

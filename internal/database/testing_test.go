package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/skillbridge/skillbridge-chat/internal/models"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Application{},
		&models.Room{},
		&models.Message{},
		&models.Notification{},
	))

	return NewDatabase(db)
}

// seedConversation готовит отклик id=5 между студентом 10 и рекрутером 20
func seedConversation(t *testing.T, d *Database) *models.Application {
	t.Helper()

	users := []models.User{
		{ID: 10, Username: "student", Email: "student@example.com", PasswordHash: "x", Role: "student"},
		{ID: 20, Username: "recruiter", Email: "recruiter@example.com", PasswordHash: "x", Role: "recruiter"},
	}
	for i := range users {
		require.NoError(t, d.SaveUser(&users[i]))
	}

	app := &models.Application{
		ID:            5,
		JobTitle:      "Backend Intern",
		StudentID:     10,
		RecruiterID:   20,
		StudentName:   "Sam Student",
		RecruiterName: "Rita Recruiter",
		Status:        "pending",
		CreatedAt:     time.Now(),
	}
	require.NoError(t, d.SaveApplication(app))

	return app
}

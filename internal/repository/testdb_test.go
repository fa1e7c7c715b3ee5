package repository

import (
	"fmt"
	"strings"
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/pkg/database"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DBName: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func seedSurvey(t *testing.T, db *gorm.DB, slug string) *model.Survey {
	t.Helper()
	survey := &model.Survey{Slug: slug, Title: "Survey " + slug, IsActive: true}
	require.NoError(t, db.Create(survey).Error)
	return survey
}

func textQuestion(id uint, label string) model.Question {
	return model.Question{
		BaseModel: model.BaseModel{ID: id},
		Label:     label,
		Type:      model.QuestionText,
	}
}

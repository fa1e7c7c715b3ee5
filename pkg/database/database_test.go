package database

import (
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMigrateAndSeedAdmin(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", DBName: "file:seed?mode=memory&cache=shared"}, false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	admin := &config.AdminConfig{Name: "Root", Email: "root@example.com", Password: "s3cret-pass"}
	require.NoError(t, SeedAdmin(db, admin))
	// 已有用户时不重复写入
	require.NoError(t, SeedAdmin(db, admin))

	var users []model.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, model.Admin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("s3cret-pass")))
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	db, err := InitDB(&config.DatabaseConfig{Driver: "sqlite", DBName: "file:noseed?mode=memory&cache=shared"}, false)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedAdmin(db, &config.AdminConfig{}))

	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

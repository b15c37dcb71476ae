package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lumendocs/collab-service/internal/domain"
)

func newTestRepo(t *testing.T) *GormDocumentRepository {
	t.Helper()
	// Named per test so parallel packages never share state; cache=shared
	// keeps the database alive across the pool's connections.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.DocumentModel{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return NewGormDocumentRepository(db)
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := &domain.Document{
		Title:   "Design notes",
		Content: "draft",
		OwnerID: "owner-1",
		Collaborators: []domain.Collaborator{
			{UserID: "u2", Permission: domain.PermissionWrite},
		},
	}
	require.NoError(t, repo.Create(ctx, doc))
	require.NotEmpty(t, doc.ID)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design notes", got.Title)
	assert.Equal(t, "draft", got.Content)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, "owner-1", got.OwnerID)
	require.Len(t, got.Collaborators, 1)
	assert.Equal(t, domain.PermissionWrite, got.Collaborators[0].Permission)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestSetContentBumpsVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := &domain.Document{Title: "t", OwnerID: "owner-1"}
	require.NoError(t, repo.Create(ctx, doc))

	v, err := repo.SetContent(ctx, doc.ID, "hello", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = repo.SetContent(ctx, doc.ID, "hello world", "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	got, err := repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, "u2", got.LastEditorID)
}

func TestSetContentMissingDocument(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.SetContent(context.Background(), "does-not-exist", "x", "u1")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

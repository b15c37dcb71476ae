package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumendocs/collab-service/internal/domain"
	"github.com/lumendocs/collab-service/pkg/log"
)

// GormDocumentRepository implements DocumentRepository using GORM.
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GORM-based document repository.
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Create inserts a new document with version 1.
func (r *GormDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	l := log.Ctx(ctx)

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}

	model := domain.DocumentToModel(doc)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create document in db")
		return err
	}

	doc.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldDocumentID, doc.ID).Msg("document created in db")
	return nil
}

// GetByID retrieves a document snapshot by id.
func (r *GormDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	l := log.Ctx(ctx)

	var model domain.DocumentModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldDocumentID, id).Msg("failed to get document by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// SetContent replaces the content and bumps the version in one
// transaction. The single UPDATE keeps the row locked until commit, so two
// concurrent edits serialize at the database and each observes a strictly
// greater version. Content itself is last-writer-wins.
func (r *GormDocumentRepository) SetContent(ctx context.Context, id, content, editorID string) (int64, error) {
	l := log.Ctx(ctx)

	var newVersion int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.DocumentModel{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"content":        content,
				"version":        gorm.Expr("version + ?", 1),
				"last_editor_id": editorID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrDocumentNotFound
		}

		var model domain.DocumentModel
		if err := tx.Select("version").First(&model, "id = ?", id).Error; err != nil {
			return err
		}
		newVersion = model.Version
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return 0, err
		}
		l.Error().Err(err).Str(log.FieldDocumentID, id).Msg("failed to set document content")
		return 0, err
	}

	l.Debug().
		Str(log.FieldDocumentID, id).
		Str(log.FieldUserID, editorID).
		Int64(log.FieldVersion, newVersion).
		Msg("document content persisted")
	return newVersion, nil
}

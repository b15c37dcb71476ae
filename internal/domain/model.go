package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// CollaboratorList stores collaborators as a JSON column so the same model
// works across postgres, mysql and sqlite.
type CollaboratorList []Collaborator

// Scan implements the sql.Scanner interface for reading from the database.
func (l *CollaboratorList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("CollaboratorList: unsupported scan type")
	}
}

// Value implements the driver.Valuer interface for writing to the database.
func (l CollaboratorList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType returns the GORM data type hint.
func (CollaboratorList) GormDataType() string {
	return "text"
}

// DocumentModel is the GORM model for the documents table.
type DocumentModel struct {
	ID            string           `gorm:"type:varchar(36);primaryKey"`
	Title         string           `gorm:"type:varchar(200);not null"`
	Content       string           `gorm:"type:text"`
	Version       int64            `gorm:"not null;default:1"`
	OwnerID       string           `gorm:"type:varchar(36);index;not null"`
	Collaborators CollaboratorList `gorm:"type:text"`
	IsPublic      bool             `gorm:"not null;default:false"`
	LastEditorID  string           `gorm:"type:varchar(36)"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime"`
}

// TableName specifies the table name for DocumentModel.
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts DocumentModel to domain Document.
func (m *DocumentModel) ToDomain() *Document {
	return &Document{
		ID:            m.ID,
		Title:         m.Title,
		Content:       m.Content,
		Version:       m.Version,
		OwnerID:       m.OwnerID,
		Collaborators: []Collaborator(m.Collaborators),
		IsPublic:      m.IsPublic,
		LastEditorID:  m.LastEditorID,
		UpdatedAt:     m.UpdatedAt,
	}
}

// DocumentToModel converts a domain Document to its GORM model.
func DocumentToModel(d *Document) *DocumentModel {
	return &DocumentModel{
		ID:            d.ID,
		Title:         d.Title,
		Content:       d.Content,
		Version:       d.Version,
		OwnerID:       d.OwnerID,
		Collaborators: CollaboratorList(d.Collaborators),
		IsPublic:      d.IsPublic,
		LastEditorID:  d.LastEditorID,
		UpdatedAt:     d.UpdatedAt,
	}
}

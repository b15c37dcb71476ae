package domain

import "time"

// Permission levels a collaborator can hold on a document.
type Permission string

const (
	PermissionRead  Permission = "read"
	PermissionWrite Permission = "write"
	PermissionAdmin Permission = "admin"
)

// Collaborator is a user granted access to a document.
type Collaborator struct {
	UserID     string     `json:"user_id"`
	Permission Permission `json:"permission"`
}

// Document is a snapshot of an editable document. The version counter
// strictly increases with every accepted edit; content conflicts resolve
// last-writer-wins.
type Document struct {
	ID            string
	Title         string
	Content       string
	Version       int64
	OwnerID       string
	Collaborators []Collaborator
	IsPublic      bool
	LastEditorID  string
	UpdatedAt     time.Time
}

// CanView reports whether userID may open the document: the owner, any
// collaborator, or anyone when the document is public.
func (d *Document) CanView(userID string) bool {
	if d.IsPublic || d.OwnerID == userID {
		return true
	}
	for _, c := range d.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// CanEdit reports whether userID may write: the owner, or a collaborator
// with write or admin permission. Read-only collaborators may not edit.
func (d *Document) CanEdit(userID string) bool {
	if d.OwnerID == userID {
		return true
	}
	for _, c := range d.Collaborators {
		if c.UserID == userID {
			return c.Permission == PermissionWrite || c.Permission == PermissionAdmin
		}
	}
	return false
}

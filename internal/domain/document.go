package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Document
var (
	ErrEmptyDocumentID     = errors.New("document ID cannot be empty")
	ErrEmptyDocumentOrgID  = errors.New("document org ID cannot be empty")
	ErrEmptyDocumentCaseID = errors.New("document case ID cannot be empty")
	ErrEmptyStoragePath    = errors.New("document storage path cannot be empty")
)

// Document represents an uploaded case file. The raw bytes live in blob
// storage under StoragePath; this row is the relational anchor that chunks
// reference.
type Document struct {
	ID          uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"org_id"`
	CaseID      uuid.UUID `json:"case_id"`
	StoragePath string    `json:"storage_path"`
	Filename    string    `json:"filename"`
	Mime        string    `json:"mime"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks if the Document has valid data.
func (d *Document) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDocumentID
	}

	if d.OrgID == uuid.Nil {
		return ErrEmptyDocumentOrgID
	}

	if d.CaseID == uuid.Nil {
		return ErrEmptyDocumentCaseID
	}

	if d.StoragePath == "" {
		return ErrEmptyStoragePath
	}

	return nil
}

// Case is a litigation matter owned by an org. Only the fields the worker
// reads are modeled; case CRUD lives in the web API layer.
type Case struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

package document

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	UploadedBy  uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	FileName    string    `db:"file_name" json:"file_name"`
	ContentType string    `db:"content_type" json:"content_type"`
	SizeBytes   int64     `db:"size_bytes" json:"size_bytes"`
	SHA256      string    `db:"sha256" json:"sha256"`
	Category    string    `db:"category" json:"category"`
	Description *string   `db:"description" json:"description,omitempty"`
	StorageKey  string    `db:"storage_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

var categories = map[string]bool{
	"lab_report":   true,
	"prescription": true,
	"imaging":      true,
	"insurance":    true,
	"other":        true,
}

// Upload is a file received from the multipart form.
type Upload struct {
	FileName    string
	ContentType string
	Category    string
	Description string
	Body        io.Reader
}

type Filter struct {
	PatientID *uuid.UUID
	// CareDoctorID limits results to patients this doctor has a care
	// relationship with.
	CareDoctorID *uuid.UUID
	Category     *string
}

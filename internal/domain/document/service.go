package document

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carepoint/portal/internal/domain/directory"
	"github.com/carepoint/portal/internal/platform/auth"
	"github.com/carepoint/portal/internal/platform/blobstore"
	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/internal/platform/httpx"
	"github.com/carepoint/portal/internal/platform/middleware"
	"github.com/carepoint/portal/pkg/pagination"
)

const maxFileNameLen = 255

type Service struct {
	repo    Repository
	store   blobstore.Store
	dir     directory.Resolver
	maxSize int64
}

func NewService(repo Repository, store blobstore.Store, dir directory.Resolver, maxSize int64) *Service {
	return &Service{repo: repo, store: store, dir: dir, maxSize: maxSize}
}

// Upload stores a file on the caller's own patient record. The blob is
// written first; if the metadata insert fails the blob is removed again.
func (s *Service) Upload(ctx context.Context, caller *auth.Caller, up Upload) (*Document, error) {
	if !caller.Is(auth.RolePatient) {
		return nil, httpx.Forbidden("only patients can upload documents")
	}
	patientID, err := directory.OwnPatientID(ctx, s.dir, caller)
	if err != nil {
		return nil, err
	}

	if up.Category == "" {
		up.Category = "other"
	}
	if !categories[up.Category] {
		return nil, httpx.BadRequest("unknown document category")
	}
	contentType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil {
		return nil, httpx.BadRequest("invalid content type")
	}
	if err := blobstore.CheckContentType(contentType); err != nil {
		return nil, httpx.BadRequest("file type is not allowed")
	}
	name := middleware.SanitizeString(filepath.Base(up.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, httpx.BadRequest("file name is required")
	}
	if len(name) > maxFileNameLen {
		name = strings.ToValidUTF8(name[:maxFileNameLen], "")
	}

	doc := &Document{
		ID:          uuid.New(),
		PatientID:   patientID,
		UploadedBy:  caller.UserID,
		FileName:    name,
		ContentType: contentType,
		Category:    up.Category,
	}
	if desc := middleware.SanitizeString(up.Description); desc != "" {
		doc.Description = &desc
	}
	doc.StorageKey = doc.ID.String()

	obj, err := s.store.Put(ctx, doc.StorageKey, up.Body, s.maxSize)
	if err != nil {
		if errors.Is(err, blobstore.ErrTooLarge) {
			return nil, httpx.PayloadTooLarge()
		}
		return nil, err
	}
	doc.SizeBytes = obj.Size
	doc.SHA256 = obj.SHA256

	if err := s.repo.Create(ctx, doc); err != nil {
		s.removeBlob(ctx, doc.StorageKey)
		return nil, err
	}
	return doc, nil
}

// List narrows the filter to what the caller may see. A doctor naming a
// patient needs a care relationship; without a patient they see the
// documents of everyone under their care.
func (s *Service) List(ctx context.Context, caller *auth.Caller, f Filter, p pagination.Params) ([]*Document, int, error) {
	switch {
	case caller.Is(auth.RoleAdmin, auth.RoleNurse):
	case caller.Is(auth.RolePatient):
		id, err := directory.OwnPatientID(ctx, s.dir, caller)
		if err != nil {
			return nil, 0, err
		}
		f.PatientID = &id
	case caller.Is(auth.RoleDoctor):
		doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
		if err != nil {
			return nil, 0, err
		}
		if f.PatientID != nil {
			if err := directory.RequireCare(ctx, s.dir, doctorID, *f.PatientID); err != nil {
				return nil, 0, err
			}
		} else {
			f.CareDoctorID = &doctorID
		}
	default:
		return nil, 0, httpx.Forbidden("insufficient role")
	}
	return s.repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, httpx.NotFound("document not found")
	}
	if err != nil {
		return nil, err
	}

	switch {
	case caller.Is(auth.RoleAdmin, auth.RoleNurse):
	case caller.Is(auth.RolePatient):
		own, err := directory.OwnPatientID(ctx, s.dir, caller)
		if err != nil {
			return nil, err
		}
		if own != doc.PatientID {
			return nil, httpx.Forbidden("not your document")
		}
	case caller.Is(auth.RoleDoctor):
		doctorID, err := directory.OwnDoctorID(ctx, s.dir, caller)
		if err != nil {
			return nil, err
		}
		if err := directory.RequireCare(ctx, s.dir, doctorID, doc.PatientID); err != nil {
			return nil, err
		}
	default:
		return nil, httpx.Forbidden("insufficient role")
	}
	return doc, nil
}

// Open returns the document and its body. The caller closes the reader.
func (s *Service) Open(ctx context.Context, caller *auth.Caller, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.store.Open(ctx, doc.StorageKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		zerolog.Ctx(ctx).Error().Str("document_id", id.String()).Msg("document body missing from blob store")
		return nil, nil, httpx.NotFound("document file not found")
	}
	if err != nil {
		return nil, nil, err
	}
	return doc, body, nil
}

// Delete removes one of the caller's own documents. Another patient's id
// matches no row and reads as 404.
func (s *Service) Delete(ctx context.Context, caller *auth.Caller, id uuid.UUID) error {
	if !caller.Is(auth.RolePatient) {
		return httpx.Forbidden("only patients can delete documents")
	}
	patientID, err := directory.OwnPatientID(ctx, s.dir, caller)
	if err != nil {
		return err
	}
	key, err := s.repo.Delete(ctx, id, patientID)
	if errors.Is(err, db.ErrNotFound) {
		return httpx.NotFound("document not found")
	}
	if err != nil {
		return err
	}
	s.removeBlob(ctx, key)
	return nil
}

func (s *Service) removeBlob(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("storage_key", key).Msg("remove document blob")
	}
}

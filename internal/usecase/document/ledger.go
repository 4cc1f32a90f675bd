package document

import (
	"context"
	"errors"
	"fmt"
	"io"

	"insurance-claims-backend/internal/domain/claim"
	domain "insurance-claims-backend/internal/domain/document"
	"insurance-claims-backend/internal/infrastructure/logger"
	"insurance-claims-backend/pkg/id"
)

// BlobStore holds document bytes under opaque stored filenames.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// Upload is one incoming file. Open is called at most once, after the whole
// batch passed validation.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

type Ledger struct {
	blobs BlobStore
	log   *logger.Logger
}

func NewLedger(blobs BlobStore, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.NewNop()
	}
	return &Ledger{blobs: blobs, log: log}
}

// Staged is a validated batch whose blobs are already stored but whose rows
// are not yet attached to a claim.
type Staged struct {
	Docs []domain.Document
}

func (s *Staged) keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Docs))
	for _, d := range s.Docs {
		out = append(out, d.StoredFilename)
	}
	return out
}

func (s *Staged) Empty() bool { return s == nil || len(s.Docs) == 0 }

// Validate checks a batch without storing anything.
func (l *Ledger) Validate(origin domain.Origin, uploads []Upload) error {
	metas := make([]domain.FileMeta, 0, len(uploads))
	for _, u := range uploads {
		metas = append(metas, domain.FileMeta{Filename: u.Filename, Size: u.Size})
	}
	return domain.ValidateBatch(origin, metas)
}

// Stage validates the whole batch before touching storage, then writes every
// blob. A storage failure removes what was already written.
func (l *Ledger) Stage(ctx context.Context, origin domain.Origin, uploaderID string, uploads []Upload) (*Staged, error) {
	if err := l.Validate(origin, uploads); err != nil {
		return nil, err
	}

	st := &Staged{Docs: make([]domain.Document, 0, len(uploads))}
	for _, u := range uploads {
		mime, _ := domain.MimeTypeFor(u.Filename)
		d := domain.Document{
			OriginalFilename: u.Filename,
			StoredFilename:   id.NewStoredKey(domain.Extension(u.Filename)),
			MimeType:         mime,
			FileSizeBytes:    u.Size,
			IsReviewDocument: origin.IsReview(),
			UploadedByUserID: uploaderID,
		}
		if err := l.put(ctx, d, u); err != nil {
			l.Discard(ctx, st)
			return nil, err
		}
		st.Docs = append(st.Docs, d)
	}
	return st, nil
}

func (l *Ledger) put(ctx context.Context, d domain.Document, u Upload) error {
	if u.Open == nil {
		return fmt.Errorf("upload %s has no content", u.Filename)
	}
	rc, err := u.Open()
	if err != nil {
		return fmt.Errorf("open upload %s: %w", u.Filename, err)
	}
	defer rc.Close()
	return l.blobs.Put(ctx, d.StoredFilename, rc, d.FileSizeBytes, d.MimeType)
}

// Attach inserts the staged rows for c through repo, which should be bound
// to the caller's transaction.
func (l *Ledger) Attach(ctx context.Context, repo domain.Repository, c *claim.Claim, st *Staged) error {
	if st.Empty() {
		return nil
	}
	for i := range st.Docs {
		st.Docs[i].ClaimID = c.ID
	}
	return repo.CreateBatch(ctx, st.Docs)
}

// Discard deletes staged blobs after the surrounding transaction failed.
func (l *Ledger) Discard(ctx context.Context, st *Staged) {
	for _, k := range st.keys() {
		if err := l.blobs.Delete(context.WithoutCancel(ctx), k); err != nil {
			l.log.Warn("orphaned blob", "stored_filename", k, "error", err)
		}
	}
}

// IsFileValidation reports whether err is a batch rejection.
func IsFileValidation(err error) bool { return errors.Is(err, domain.ErrFileValidation) }

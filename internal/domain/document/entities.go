package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrFileValidation = errors.New("file validation failed")
	ErrNotFound       = errors.New("document not found")
)

// Origin tells who attached a document. It is derived from the endpoint,
// never from the request body.
type Origin string

const (
	OriginClaimant Origin = "claimant"
	OriginReviewer Origin = "reviewer"
)

const (
	MaxFileSize        int64 = 5 << 20
	MaxClaimantFiles         = 5
	MaxReviewerFiles         = 3
	maxOriginalNameLen       = 255
)

var allowedExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func (o Origin) MaxFiles() int {
	if o == OriginReviewer {
		return MaxReviewerFiles
	}
	return MaxClaimantFiles
}

func (o Origin) IsReview() bool { return o == OriginReviewer }

type Document struct {
	ID               uint64    `gorm:"primaryKey;column:id" json:"-"`
	ClaimID          uint64    `gorm:"not null;index:idx_documents_claim" json:"-"`
	OriginalFilename string    `gorm:"size:255" json:"original_filename"`
	StoredFilename   string    `gorm:"size:64;uniqueIndex:ux_documents_stored" json:"stored_filename"`
	MimeType         string    `gorm:"size:128" json:"mime_type"`
	FileSizeBytes    int64     `json:"file_size_bytes"`
	IsReviewDocument bool      `gorm:"default:false" json:"is_review_document"`
	UploadedByUserID string    `gorm:"size:32" json:"uploaded_by_user_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Document) TableName() string { return "documents" }

// FileMeta is what the ledger needs to know about an upload before storing it.
type FileMeta struct {
	Filename string
	Size     int64
	MimeType string
}

// FileValidationError names the first file that broke a batch rule.
type FileValidationError struct {
	Filename string
	Reason   string
}

func (e *FileValidationError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: %s", ErrFileValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrFileValidation, e.Filename, e.Reason)
}

func (e *FileValidationError) Unwrap() error { return ErrFileValidation }

// Extension returns the lowercased extension without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// MimeTypeFor returns the canonical mime type for an allowed extension.
func MimeTypeFor(filename string) (string, bool) {
	m, ok := allowedExtensions[Extension(filename)]
	return m, ok
}

// ValidateBatch checks a whole upload batch. The batch is accepted or
// rejected as a unit; the first offending file is reported.
func ValidateBatch(origin Origin, files []FileMeta) error {
	if len(files) > origin.MaxFiles() {
		return &FileValidationError{Reason: fmt.Sprintf("at most %d files allowed, got %d", origin.MaxFiles(), len(files))}
	}
	for _, f := range files {
		name := strings.TrimSpace(f.Filename)
		switch {
		case name == "":
			return &FileValidationError{Reason: "file name is required"}
		case len(name) > maxOriginalNameLen:
			return &FileValidationError{Filename: name[:32] + "...", Reason: "file name is too long"}
		case f.Size > MaxFileSize:
			return &FileValidationError{Filename: name, Reason: "file exceeds 5MB"}
		}
		if _, ok := allowedExtensions[Extension(name)]; !ok {
			return &FileValidationError{Filename: name, Reason: "unsupported file type (allowed: png, jpg, jpeg, pdf, doc, docx)"}
		}
	}
	return nil
}

// SplitByOrigin partitions a claim's documents into claimant and reviewer sets.
func SplitByOrigin(docs []Document) (claimant, review []Document) {
	for _, d := range docs {
		if d.IsReviewDocument {
			review = append(review, d)
		} else {
			claimant = append(claimant, d)
		}
	}
	return claimant, review
}

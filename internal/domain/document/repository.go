package document

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, docs []Document) error
	// ListByClaim returns documents in upload order.
	ListByClaim(ctx context.Context, claimNumericID uint64) ([]Document, error)
	GetByStoredFilename(ctx context.Context, stored string) (*Document, error)
}

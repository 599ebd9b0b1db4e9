package domain

import "context"

// ProductRepository handles persistence for product documents.
type ProductRepository interface {
	// FindByName returns the product matching name exactly, or ErrNotFound.
	FindByName(ctx context.Context, name string) (*Product, error)
	// UpsertSubmission applies one successful upload as a single atomic
	// update: image URLs are appended, description and sizePriceData are
	// overwritten, and the document is created when the name is unseen.
	// Returns the document as it exists after the update.
	UpsertSubmission(ctx context.Context, name string, update ProductUpdate) (*Product, error)
}

// ObjectStore persists binary blobs and returns a publicly reachable URL
// for each stored object.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

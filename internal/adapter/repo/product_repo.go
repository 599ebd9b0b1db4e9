package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"server/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productCollection = "products"

// ProductRepo persists products in a MongoDB collection.
type ProductRepo struct {
	col *mongo.Collection
}

func NewProductRepo(db *mongo.Database) *ProductRepo {
	return &ProductRepo{col: db.Collection(productCollection)}
}

// EnsureIndexes creates the unique index on productName. Concurrent first
// submissions for the same name then race on the index instead of creating
// two documents.
func (r *ProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "productName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create productName index: %w", err)
	}
	return nil
}

func (r *ProductRepo) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	var product domain.Product
	err := r.col.FindOne(ctx, bson.M{"productName": name}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find product %q: %v", domain.ErrPersistence, name, err)
	}
	return &product, nil
}

func (r *ProductRepo) UpsertSubmission(ctx context.Context, name string, update domain.ProductUpdate) (*domain.Product, error) {
	now := time.Now().UTC()
	change := bson.M{
		"$push": bson.M{"images": bson.M{"$each": update.ImageURLs}},
		"$set": bson.M{
			"description":   update.Description,
			"sizePriceData": update.SizePriceData,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var product domain.Product
	err := r.col.FindOneAndUpdate(ctx, bson.M{"productName": name}, change, opts).Decode(&product)
	if err != nil {
		return nil, fmt.Errorf("%w: upsert product %q: %v", domain.ErrPersistence, name, err)
	}
	return &product, nil
}

// ReferencedImageURLs returns every image URL referenced by any product
// document. Used by the orphan sweeper to decide which stored objects are
// still reachable.
func (r *ProductRepo) ReferencedImageURLs(ctx context.Context) (map[string]struct{}, error) {
	values, err := r.col.Distinct(ctx, "images", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: list image urls: %v", domain.ErrPersistence, err)
	}
	urls := make(map[string]struct{}, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			urls[s] = struct{}{}
		}
	}
	return urls, nil
}

var _ domain.ProductRepository = (*ProductRepo)(nil)

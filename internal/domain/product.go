package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the persisted catalog entry. productName acts as the natural key:
// lookups and upserts match on it, and the repository enforces a unique index.
type Product struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProductName   string             `json:"productName" bson:"productName"`
	Description   string             `json:"description" bson:"description"`
	Images        []string           `json:"images" bson:"images"`
	SizePriceData string             `json:"sizePriceData" bson:"sizePriceData"`
	CreatedAt     time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt     time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// SubmissionFile is one uploaded image prior to watermarking.
type SubmissionFile struct {
	Filename string
	Data     []byte
}

// Submission carries one product intake request as parsed from the form.
type Submission struct {
	ProductName     string
	UserDescription string
	Sizes           []string
	Prices          []string
	Files           []SubmissionFile
}

// ProductUpdate describes the fields applied by one successful upload:
// image URLs are appended, description and sizePriceData are overwritten.
type ProductUpdate struct {
	Description   string
	SizePriceData string
	ImageURLs     []string
}

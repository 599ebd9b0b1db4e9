package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/providers/describe"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MaxFilesPerSubmission caps the number of image parts accepted per upload.
const MaxFilesPerSubmission = 10

// Watermarker overlays a text label onto image bytes and re-encodes as JPEG.
type Watermarker interface {
	Apply(imageBytes []byte, label string) ([]byte, error)
}

// UploaderOptions wires the collaborators of the upload pipeline.
type UploaderOptions struct {
	Products   domain.ProductRepository
	Store      domain.ObjectStore
	Describer  describe.Describer
	Compositor Watermarker
	Logger     zerolog.Logger
	// Now stamps object keys; defaults to time.Now.
	Now func() time.Time
}

// Uploader orchestrates one product submission: validate, generate the
// description, watermark and upload every image concurrently, then upsert
// the product document.
type Uploader struct {
	products   domain.ProductRepository
	store      domain.ObjectStore
	describer  describe.Describer
	compositor Watermarker
	logger     zerolog.Logger
	now        func() time.Time
}

func NewUploader(opts UploaderOptions) *Uploader {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Uploader{
		products:   opts.Products,
		store:      opts.Store,
		describer:  opts.Describer,
		compositor: opts.Compositor,
		logger:     opts.Logger,
		now:        now,
	}
}

// Upload runs the pipeline for one submission and returns the product
// document as persisted. Stages are terminal: the first failure aborts the
// request, and completed sibling uploads are not rolled back.
func (u *Uploader) Upload(ctx context.Context, sub domain.Submission) (*domain.Product, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	description, err := u.describer.Describe(ctx, describe.Request{
		ProductName:     sub.ProductName,
		UserDescription: sub.UserDescription,
		Sizes:           sub.Sizes,
		Prices:          sub.Prices,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	urls, err := u.uploadImages(ctx, sub)
	if err != nil {
		return nil, err
	}

	product, err := u.products.UpsertSubmission(ctx, sub.ProductName, domain.ProductUpdate{
		Description:   description,
		SizePriceData: describe.AuxiliaryInfo(sub.Sizes, sub.Prices),
		ImageURLs:     urls,
	})
	if err != nil {
		u.logger.Error().Err(err).Str("product", sub.ProductName).
			Int("uploaded", len(urls)).
			Msg("upload persisted objects but failed to save product")
		return nil, err
	}
	return product, nil
}

// uploadImages watermarks and stores every file concurrently. URLs are
// returned in submission order. The first failure cancels in-flight siblings;
// siblings that already finished leave their objects behind.
func (u *Uploader) uploadImages(ctx context.Context, sub domain.Submission) ([]string, error) {
	urls := make([]string, len(sub.Files))
	stamp := u.now().UnixMilli()

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range sub.Files {
		i, file := i, file
		g.Go(func() error {
			marked, err := u.compositor.Apply(file.Data, sub.ProductName)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrImageProcessing, file.Filename, err)
			}
			// The slot index keeps keys distinct when one submission
			// carries duplicate filenames.
			key := fmt.Sprintf("products/%d-%d-%s", stamp, i, file.Filename)
			url, err := u.store.Put(gctx, key, "image/jpeg", marked)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrStorageUpload, file.Filename, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func validate(sub domain.Submission) error {
	if strings.TrimSpace(sub.ProductName) == "" {
		return fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(sub.UserDescription) == "" {
		return fmt.Errorf("%w: user description is required", domain.ErrValidation)
	}
	if len(sub.Files) == 0 {
		return fmt.Errorf("%w: at least one image is required", domain.ErrValidation)
	}
	if len(sub.Files) > MaxFilesPerSubmission {
		return fmt.Errorf("%w: at most %d images per submission", domain.ErrValidation, MaxFilesPerSubmission)
	}
	return nil
}

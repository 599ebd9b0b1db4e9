package domain

import "errors"

var (
	ErrValidation      = errors.New("invalid submission")
	ErrGeneration      = errors.New("description generation failed")
	ErrImageProcessing = errors.New("image processing failed")
	ErrStorageUpload   = errors.New("storage upload failed")
	ErrPersistence     = errors.New("persistence failed")
	ErrNotFound        = errors.New("not found")
)

package services

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// Publish stages; callers tell a failed document write from a failed
	// page render with errors.Is.
	ErrDocumentSave   = errors.New("document save failed")
	ErrPageGeneration = errors.New("page generation failed")
)

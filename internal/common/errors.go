// Package common defines sentinel errors shared by the repositories, services
// and the chat handler. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound   = errors.New("not found")
	ErrCodeExists = errors.New("code already exists")

	// Service-level errors.
	ErrInternal      = errors.New("internal error")
	ErrEmptyBatch    = errors.New("empty batch")
	ErrArchiveFailed = errors.New("no file could be archived")
)

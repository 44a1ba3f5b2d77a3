// Package codegen produces the short retrieval codes handed out for archived batches.
package codegen

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the number of characters in a generated code.
const Length = 8

// Generator produces codes. Uniqueness is probabilistic; the metadata
// primary key is the authoritative guard.
type Generator interface {
	Generate() string
}

// UUIDGenerator takes the first 8 hex characters of a random UUID.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() string {
	id := uuid.New()
	return strings.ToUpper(id.String()[:Length])
}

// Normalize trims user input and upper-cases it so lookups are case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

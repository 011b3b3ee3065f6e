package workflow

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces ticket identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator derives short ticket ids ("ZS-1A2B3C4D") from random UUIDs.
type UUIDGenerator struct {
	Prefix string
}

// NewID implements IDGenerator.
func (g UUIDGenerator) NewID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "ZS"
	}
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:8])
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() string { return f() }

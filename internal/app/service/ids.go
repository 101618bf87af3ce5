package service

import (
	"strings"

	"github.com/google/uuid"
)

// newHexID produces the opaque externally-visible identifier for a record.
// It is distinct from the uuid primary key so URLs never expose storage keys.
func newHexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a server-side record id. Server ids are deliberately not in
// canonical UUID form: the sync endpoints reject 36-char hyphenated ids as
// unsynced offline references, so hyphens are stripped here.
func NewID() string {
	return "c" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

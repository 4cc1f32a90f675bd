package id

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

var reStoredKey = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}(\.[a-z0-9]{1,8})?$`)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// NewStoredKey returns a time-ordered, collision-free blob name that keeps the
// (lowercased) extension of the uploaded file, e.g. 01J9Z3...Q.pdf.
func NewStoredKey(ext string) string {
	k := ulid.Make().String()
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return k
	}
	return k + "." + ext
}

// IsStoredKey reports whether s looks like a key made by NewStoredKey. Used to
// reject path tricks on download.
func IsStoredKey(s string) bool { return reStoredKey.MatchString(s) }

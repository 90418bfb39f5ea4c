package vorgaben

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Digest fingerprints an import: the source text, every metadata field that
// ends up in the store, and the catalog decisions that shaped what gets
// written (dropped requirements, content type fallbacks). Registering a
// missing topic therefore changes the digest of the same source.
func Digest(text string, meta Metadata, resolved ...Warning) string {
	h := blake3.New()
	for _, field := range []string{
		meta.DocumentID,
		meta.Name,
		meta.DocumentType,
		formatOptionalDate(meta.ValidFrom),
		formatOptionalDate(meta.ValidUntil),
	} {
		_, _ = h.Write([]byte(field))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte(text))
	for _, w := range resolved {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(w.Kind.String() + ":" + w.Message))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

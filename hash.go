package cardlingo

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// FieldKey derives the cache key for one field translation. The key
// covers the source text, the target language, and the identity
// substituted for the character placeholder, so the same description
// aimed at two different characters caches separately. Parts are
// length-prefixed before hashing so no two tuples collide by
// concatenation.
func FieldKey(text, targetLang, charIdentity string) string {
	h := sha256.New()
	var n [8]byte
	for _, part := range []string{strings.TrimSpace(text), targetLang, charIdentity} {
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

package quiz

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/robalobadob/idiomle/apps/go-server/internal/idiom"
)

// idLen is the number of hex characters kept from the digest.
const idLen = 16

// DeriveID returns a stable identifier for an ordered idiom list: the first
// 16 hex characters of SHA-256 over the comma-joined encrypted idioms.
// The browser client derives the same value.
func DeriveID(idioms []string) string {
	codes := make([]string, len(idioms))
	for i, s := range idioms {
		codes[i] = idiom.Encrypt(s)
	}
	sum := sha256.Sum256([]byte(strings.Join(codes, ",")))
	return hex.EncodeToString(sum[:])[:idLen]
}

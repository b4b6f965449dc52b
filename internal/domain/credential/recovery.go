package credential

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	recoveryKeyBytes = 32
	recoveryGroupLen = 4
)

// GenerateRecoveryKey returns a new key as upper-case hex split into groups of
// four, e.g. "9F3A-0C41-...". The key is shown to the owner once.
func GenerateRecoveryKey() (string, error) {
	raw := make([]byte, recoveryKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate recovery key: %w", err)
	}

	h := strings.ToUpper(hex.EncodeToString(raw))

	groups := make([]string, 0, len(h)/recoveryGroupLen)
	for i := 0; i < len(h); i += recoveryGroupLen {
		groups = append(groups, h[i:i+recoveryGroupLen])
	}
	return strings.Join(groups, "-"), nil
}

// NormalizeRecoveryKey strips separators and case so that the owner may type
// the key with or without dashes. The result stays under bcrypt's 72-byte limit.
func NormalizeRecoveryKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

/*
Package randx generates identifiers: UUID connection ids, Base62 guest ids and
object keys. Everything random comes from crypto/rand.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars is the Base62 alphabet (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is len(Base62Chars).
	Base62Len = int64(len(Base62Chars))

	// GuestIDPrefix prefixes every issued guest id.
	GuestIDPrefix = "guest_"

	// GuestIDRawLength is the length of the Base62 part of a guest id.
	GuestIDRawLength = 6
)

// ConnectionID returns a fresh UUID v4 string for a WebSocket session.
func ConnectionID() string {
	return uuid.New().String()
}

// ObjectID returns a fresh UUID v4 string for storage keys.
func ObjectID() string {
	return uuid.New().String()
}

// base62 returns n random Base62 characters.
func base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to read random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// GuestID returns a new id of the form guest_XXXXXX.
func GuestID() (string, error) {
	raw, err := base62(GuestIDRawLength)
	if err != nil {
		return "", fmt.Errorf("guest id: %w", err)
	}

	return GuestIDPrefix + raw, nil
}

// IsValidGuestID reports whether id has the guest_XXXXXX shape.
func IsValidGuestID(id string) bool {
	rawID, ok := strings.CutPrefix(id, GuestIDPrefix)
	if !ok || len(rawID) != GuestIDRawLength {
		return false
	}

	for _, char := range rawID {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

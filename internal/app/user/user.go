/*
Package user holds the identity a relay participant is known by.

Identities are advisory: display names are client-declared, never verified and
not required to be unique.
*/
package user

import "strings"

const (
	// GuestNamePrefix starts every generated display name.
	GuestNamePrefix = "Guest-"

	// guestIDChars is how many leading id characters a guest name keeps.
	guestIDChars = 4
)

// Participant is one roster entry as sent in `active_users`.
type Participant struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// DisplayName returns declared when it is non-blank, otherwise a guest name
// derived from the first characters of connectionID.
func DisplayName(declared, connectionID string) string {
	if name := strings.TrimSpace(declared); name != "" {
		return name
	}

	return GuestName(connectionID)
}

// GuestName derives the deterministic guest name for connectionID.
func GuestName(connectionID string) string {
	prefix := connectionID
	if len(prefix) > guestIDChars {
		prefix = prefix[:guestIDChars]
	}

	return GuestNamePrefix + prefix
}

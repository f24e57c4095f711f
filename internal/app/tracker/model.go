/*
Package tracker implements the browsing time tracker behind the browser extension.

The extension reports how long each domain was in the foreground; the tracker
accumulates those reports per user, domain and day, and aggregates them into
productive, unproductive and neutral time using the user's site
classifications.
*/
package tracker

import "errors"

// Category is how a domain counts towards a user's analytics.
type Category string

const (
	CategoryProductive   Category = "productive"
	CategoryUnproductive Category = "unproductive"
	CategoryNeutral      Category = "neutral"
)

// AnonymousUserID owns submissions that carry no identity.
const AnonymousUserID = "anonymous"

var (
	// ErrNotFound is returned by a Store when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUserExists is returned by Store.CreateUser for a taken username.
	ErrUserExists = errors.New("username already exists")
)

// Entry is one time report as submitted by the extension.
type Entry struct {
	Date       string `json:"date"`
	Domain     string `json:"domain"`
	DurationMs int64  `json:"durationMs"`
}

// TimeLog is the accumulated time of one user on one domain for one day.
type TimeLog struct {
	UserID     string `json:"userId"`
	Domain     string `json:"domain"`
	Date       string `json:"date"`
	DurationMs int64  `json:"durationMs"`
}

// Classification marks a domain productive or unproductive for a user.
type Classification struct {
	UserID string   `json:"-"`
	Domain string   `json:"domain"`
	Type   Category `json:"type"`

	// Default is set for entries coming from the built-in lists.
	Default bool `json:"default"`
}

// DomainUsage is one row of the per-domain breakdown.
type DomainUsage struct {
	Domain     string   `json:"domain"`
	Category   Category `json:"category"`
	DurationMs int64    `json:"durationMs"`
}

// Analytics is the aggregated view of a user's time logs.
type Analytics struct {
	UserID string `json:"userId"`

	// Date is the day the figures are restricted to, empty for all time.
	Date string `json:"date,omitempty"`

	TotalTime        int64 `json:"totalTime"`
	ProductiveTime   int64 `json:"productiveTime"`
	UnproductiveTime int64 `json:"unproductiveTime"`
	NeutralTime      int64 `json:"neutralTime"`

	Domains []DomainUsage `json:"domains"`
}

// User is a registered account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
}

// DefaultClassifications are applied to domains a user has not classified.
var DefaultClassifications = map[string]Category{
	"github.com":           CategoryProductive,
	"stackoverflow.com":    CategoryProductive,
	"leetcode.com":         CategoryProductive,
	"developer.chrome.com": CategoryProductive,

	"facebook.com":  CategoryUnproductive,
	"twitter.com":   CategoryUnproductive,
	"instagram.com": CategoryUnproductive,
	"youtube.com":   CategoryUnproductive,
	"tiktok.com":    CategoryUnproductive,
}

// ParseClassification accepts the two storable categories.
func ParseClassification(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryProductive, CategoryUnproductive:
		return c, true
	default:
		return "", false
	}
}

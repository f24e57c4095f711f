package tracker

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store persists time logs, classifications and accounts.
type Store interface {
	// AddTime adds log.DurationMs to the (user, domain, date) total, creating it if needed.
	AddTime(ctx context.Context, log TimeLog) error

	// TimeLogs returns the user's logs, restricted to date unless it is empty.
	TimeLogs(ctx context.Context, userID, date string) ([]TimeLog, error)

	// Classifications returns the user's stored classifications.
	Classifications(ctx context.Context, userID string) ([]Classification, error)

	// SetClassification creates or replaces the classification of c.Domain.
	SetClassification(ctx context.Context, c Classification) error

	// RemoveClassification deletes a stored classification, or returns ErrNotFound.
	RemoveClassification(ctx context.Context, userID, domain string) error

	// CreateUser stores a new account, or returns ErrUserExists.
	CreateUser(ctx context.Context, username, passwordHash string) (User, error)

	// UserByUsername looks an account up, or returns ErrNotFound.
	UserByUsername(ctx context.Context, username string) (User, error)
}

type logKey struct {
	userID string
	domain string
	date   string
}

// MemoryStore is a Store kept in process memory. Data is lost on restart.
type MemoryStore struct {
	mu sync.RWMutex

	logs            map[logKey]int64
	classifications map[string]map[string]Category
	users           map[string]User
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:            make(map[logKey]int64),
		classifications: make(map[string]map[string]Category),
		users:           make(map[string]User),
	}
}

func (s *MemoryStore) AddTime(_ context.Context, log TimeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[logKey{userID: log.UserID, domain: log.Domain, date: log.Date}] += log.DurationMs
	return nil
}

func (s *MemoryStore) TimeLogs(_ context.Context, userID, date string) ([]TimeLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var logs []TimeLog
	for k, d := range s.logs {
		if k.userID != userID || (date != "" && k.date != date) {
			continue
		}
		logs = append(logs, TimeLog{UserID: k.userID, Domain: k.domain, Date: k.date, DurationMs: d})
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].Date != logs[j].Date {
			return logs[i].Date < logs[j].Date
		}
		return logs[i].Domain < logs[j].Domain
	})

	return logs, nil
}

func (s *MemoryStore) Classifications(_ context.Context, userID string) ([]Classification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Classification, 0, len(s.classifications[userID]))
	for domain, category := range s.classifications[userID] {
		list = append(list, Classification{UserID: userID, Domain: domain, Type: category})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Domain < list[j].Domain })

	return list, nil
}

func (s *MemoryStore) SetClassification(_ context.Context, c Classification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDomain, ok := s.classifications[c.UserID]
	if !ok {
		byDomain = make(map[string]Category)
		s.classifications[c.UserID] = byDomain
	}
	byDomain[c.Domain] = c.Type

	return nil
}

func (s *MemoryStore) RemoveClassification(_ context.Context, userID, domain string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classifications[userID][domain]; !ok {
		return ErrNotFound
	}
	delete(s.classifications[userID], domain)

	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, username, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return User{}, ErrUserExists
	}

	u := User{ID: uuid.NewString(), Username: username, PasswordHash: passwordHash}
	s.users[username] = u

	return u, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return User{}, ErrNotFound
	}

	return u, nil
}

package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"relayhub/internal/pkg/errs"
	"relayhub/internal/pkg/logx"
	"relayhub/internal/pkg/randx"
)

// ReportExpiration is the lifetime of an exported report's download URL.
const ReportExpiration = 15 * time.Minute

// ReportStorage is the object storage an exported report is written to.
type ReportStorage interface {
	Upload(ctx context.Context, key, contentType string, body []byte) error
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Report is the result of ExportReport.
type Report struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service validates submissions and computes analytics over a Store.
type Service struct {
	store   Store
	storage ReportStorage
	now     func() time.Time
	logger  zerolog.Logger
}

// NewService creates a Service. storage may be nil, which disables ExportReport.
func NewService(store Store, storage ReportStorage) *Service {
	return &Service{
		store:   store,
		storage: storage,
		now:     time.Now,
		logger:  logx.Component("tracker"),
	}
}

// TrackTime validates entry and adds it to the user's totals.
// It returns the stored log with the normalized domain.
func (s *Service) TrackTime(ctx context.Context, userID string, entry Entry) (TimeLog, error) {
	if userID == "" {
		userID = AnonymousUserID
	}

	if entry.Date == "" || entry.Domain == "" {
		return TimeLog{}, errs.NewError(errs.ErrTrackDataMissing)
	}
	if !ValidDate(entry.Date) {
		return TimeLog{}, errs.NewError(errs.ErrInvalidDate)
	}
	if entry.DurationMs <= 0 {
		return TimeLog{}, errs.NewError(errs.ErrInvalidDuration)
	}

	domain, ok := NormalizeDomain(entry.Domain)
	if !ok {
		return TimeLog{}, errs.NewError(errs.ErrInvalidDomain)
	}

	log := TimeLog{UserID: userID, Domain: domain, Date: entry.Date, DurationMs: entry.DurationMs}
	if err := s.store.AddTime(ctx, log); err != nil {
		return TimeLog{}, fmt.Errorf("track time: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("domain", domain).
		Str("date", entry.Date).
		Int64("duration_ms", entry.DurationMs).
		Msg("Time tracked.")

	return log, nil
}

// Analytics aggregates the user's logs, for one day when date is set.
func (s *Service) Analytics(ctx context.Context, userID, date string) (Analytics, error) {
	if date != "" && !ValidDate(date) {
		return Analytics{}, errs.NewError(errs.ErrInvalidDate)
	}

	logs, err := s.store.TimeLogs(ctx, userID, date)
	if err != nil {
		return Analytics{}, fmt.Errorf("analytics: %w", err)
	}

	categories, err := s.categories(ctx, userID)
	if err != nil {
		return Analytics{}, fmt.Errorf("analytics: %w", err)
	}

	return aggregate(userID, date, logs, categories), nil
}

// Classifications returns the user's effective classifications: stored ones
// plus the defaults for domains the user has not classified.
func (s *Service) Classifications(ctx context.Context, userID string) ([]Classification, error) {
	categories, stored, err := s.resolve(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("classifications: %w", err)
	}

	list := make([]Classification, 0, len(categories))
	for domain, category := range categories {
		_, own := stored[domain]
		list = append(list, Classification{UserID: userID, Domain: domain, Type: category, Default: !own})
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].Type != list[j].Type {
			return list[i].Type < list[j].Type
		}
		return list[i].Domain < list[j].Domain
	})

	return list, nil
}

// SetClassification stores the category of domain for the user.
func (s *Service) SetClassification(ctx context.Context, userID, domain, category string) (Classification, error) {
	normalized, ok := NormalizeDomain(domain)
	if !ok {
		return Classification{}, errs.NewError(errs.ErrInvalidDomain)
	}

	parsed, ok := ParseClassification(category)
	if !ok {
		return Classification{}, errs.NewError(errs.ErrInvalidClassification)
	}

	c := Classification{UserID: userID, Domain: normalized, Type: parsed}
	if err := s.store.SetClassification(ctx, c); err != nil {
		return Classification{}, fmt.Errorf("set classification: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("domain", normalized).Str("type", string(parsed)).Msg("Classification saved.")

	return c, nil
}

// RemoveClassification deletes a stored classification. Domains covered by
// the defaults fall back to their default category.
func (s *Service) RemoveClassification(ctx context.Context, userID, domain string) error {
	normalized, ok := NormalizeDomain(domain)
	if !ok {
		return errs.NewError(errs.ErrInvalidDomain)
	}

	if err := s.store.RemoveClassification(ctx, userID, normalized); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errs.NewError(errs.ErrClassificationNotFound)
		}
		return fmt.Errorf("remove classification: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("domain", normalized).Msg("Classification removed.")

	return nil
}

// ExportEnabled reports whether ExportReport has storage to write to.
func (s *Service) ExportEnabled() bool {
	return s.storage != nil
}

// ExportReport uploads the user's all-time analytics as JSON and returns a
// presigned download URL.
func (s *Service) ExportReport(ctx context.Context, userID string) (Report, error) {
	if s.storage == nil {
		return Report{}, errs.NewError(errs.ErrReportExportDisabled)
	}

	analytics, err := s.Analytics(ctx, userID, "")
	if err != nil {
		return Report{}, err
	}

	now := s.now().UTC()
	body, err := json.MarshalIndent(struct {
		GeneratedAt time.Time `json:"generatedAt"`
		Analytics
	}{GeneratedAt: now, Analytics: analytics}, "", "  ")
	if err != nil {
		return Report{}, fmt.Errorf("encode report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", userID, randx.ObjectID())

	if err := s.storage.Upload(ctx, key, "application/json", body); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Report upload failed.")
		return Report{}, errs.NewError(errs.ErrFileStorageFailed)
	}

	url, err := s.storage.PresignDownload(ctx, key, ReportExpiration)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Report presign failed. Removing upload.")
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", key).Msg("Orphaned report left in storage.")
		}
		return Report{}, errs.NewError(errs.ErrFileStorageFailed)
	}

	s.logger.Info().Str("user_id", userID).Str("key", key).Msg("Report exported.")

	return Report{Key: key, URL: url, ExpiresAt: now.Add(ReportExpiration)}, nil
}

func (s *Service) categories(ctx context.Context, userID string) (map[string]Category, error) {
	categories, _, err := s.resolve(ctx, userID)
	return categories, err
}

// resolve overlays the user's stored classifications on the defaults.
func (s *Service) resolve(ctx context.Context, userID string) (map[string]Category, map[string]struct{}, error) {
	stored, err := s.store.Classifications(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	categories := make(map[string]Category, len(DefaultClassifications)+len(stored))
	for domain, category := range DefaultClassifications {
		categories[domain] = category
	}

	own := make(map[string]struct{}, len(stored))
	for _, c := range stored {
		categories[c.Domain] = c.Type
		own[c.Domain] = struct{}{}
	}

	return categories, own, nil
}

// aggregate sums logs per domain and per category. Domains are ordered by
// duration descending, then name.
func aggregate(userID, date string, logs []TimeLog, categories map[string]Category) Analytics {
	perDomain := make(map[string]int64)
	for _, l := range logs {
		perDomain[l.Domain] += l.DurationMs
	}

	a := Analytics{
		UserID:  userID,
		Date:    date,
		Domains: make([]DomainUsage, 0, len(perDomain)),
	}

	for domain, duration := range perDomain {
		category, ok := categories[domain]
		if !ok {
			category = CategoryNeutral
		}

		a.TotalTime += duration
		switch category {
		case CategoryProductive:
			a.ProductiveTime += duration
		case CategoryUnproductive:
			a.UnproductiveTime += duration
		default:
			a.NeutralTime += duration
		}

		a.Domains = append(a.Domains, DomainUsage{Domain: domain, Category: category, DurationMs: duration})
	}

	sort.Slice(a.Domains, func(i, j int) bool {
		if a.Domains[i].DurationMs != a.Domains[j].DurationMs {
			return a.Domains[i].DurationMs > a.Domains[j].DurationMs
		}
		return a.Domains[i].Domain < a.Domains[j].Domain
	})

	return a
}

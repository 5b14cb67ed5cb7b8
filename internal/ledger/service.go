// Package ledger is the ledger service: the only write path into the store.
//
// Every mutation validates its input, persists the ledger entry, then appends
// exactly one activity entry as a best-effort side effect. Balances are never
// stored; every query reloads the relevant entries and folds them with the
// calculator package.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitify/internal/activity"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
	"github.com/mmynk/splitify/internal/storage"
)

// Service orchestrates the store, the balance engine and the activity log.
type Service struct {
	store    storage.Store
	recorder *activity.Recorder
	logger   *slog.Logger
	now      func() time.Time

	// concurrency bounds the per-group loads of a dashboard.
	concurrency int

	activityOpts []activity.Option
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service and its activity recorder.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
		s.activityOpts = append(s.activityOpts, activity.WithLogger(l))
	}
}

// WithActivityRetry sets how many times an activity append is attempted.
func WithActivityRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		s.activityOpts = append(s.activityOpts, activity.WithRetry(attempts, backoff))
	}
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithConcurrency bounds the number of concurrent store reads per query.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a Service over store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      slog.Default(),
		now:         time.Now,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recorder = activity.NewRecorder(store, s.activityOpts...)
	return s
}

// record appends the activity entry for a mutation that already succeeded.
// Failures are logged by the recorder and never reach the caller.
func (s *Service) record(ctx context.Context, entry *models.ActivityEntry) {
	if entry.Timestamp == 0 {
		entry.Timestamp = s.now().UnixNano()
	}
	_ = s.recorder.Record(ctx, entry)
}

// normalizeCaller validates and canonicalizes the caller identity.
func normalizeCaller(caller models.Identity) (models.Identity, error) {
	caller.Phone = models.NormalizePhone(caller.Phone)
	caller.Name = models.SanitizeText(caller.Name)
	if caller.Phone == "" {
		return caller, errs.Validation("caller phone is required")
	}
	return caller, nil
}

// displayNames resolves current names for phones, falling back to fallback
// snapshots. Lookup failures only cost names, never the operation.
func (s *Service) displayNames(ctx context.Context, phones []string, fallback map[string]string) map[string]string {
	names := make(map[string]string, len(phones))
	for p, n := range fallback {
		names[p] = n
	}
	users, err := s.store.GetUsersByPhones(ctx, phones)
	if err != nil {
		s.logger.Warn("failed to resolve display names", "count", len(phones), "error", err)
		return names
	}
	for p, u := range users {
		if _, ok := names[p]; !ok || names[p] == "" {
			names[p] = u.Name
		}
	}
	return names
}

// RegisterUser records the identity supplied by the auth collaborator. Calling
// it again refreshes the display name. It does not produce activity.
func (s *Service) RegisterUser(ctx context.Context, id models.Identity) (*models.User, error) {
	user := models.NewUser(id.Phone, id.Name, id.UID)
	if user.Phone == "" {
		return nil, errs.Validation("phone is required")
	}
	if user.Name == "" {
		return nil, errs.Validation("name is required")
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	s.logger.Info("user registered", "phone", user.Phone)
	return user, nil
}

// GetUserDisplayName returns the current display name of a registered user.
func (s *Service) GetUserDisplayName(ctx context.Context, phone string) (string, error) {
	phone = models.NormalizePhone(phone)
	if phone == "" {
		return "", errs.Validation("phone is required")
	}
	user, err := s.getUser(ctx, phone)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// getUser maps a missing user to ErrUserNotFound.
func (s *Service) getUser(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.store.GetUser(ctx, phone)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%w: no registered user with phone %s", errs.ErrUserNotFound, models.FormatPhone(phone))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

package activity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 20 * time.Millisecond
)

// Store is the subset of storage.Store the recorder needs.
type Store interface {
	AppendActivity(ctx context.Context, entry *models.ActivityEntry) error
	ListActivityFor(ctx context.Context, user string) ([]models.ActivityEntry, error)
}

// Recorder appends entries as a best-effort side effect of mutations and
// serves the feed.
type Recorder struct {
	store    Store
	logger   *slog.Logger
	attempts uint64
	backoff  time.Duration
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger used for append failures and degraded reads.
func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithRetry sets the total number of append attempts and the initial backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(r *Recorder) {
		if attempts > 0 {
			r.attempts = uint64(attempts)
		}
		if backoff > 0 {
			r.backoff = backoff
		}
	}
}

// NewRecorder creates a Recorder over store.
func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:    store,
		logger:   slog.Default(),
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends entry, retrying transient store failures. The mutation the
// entry describes is already persisted, so a final failure is logged and
// returned for the caller to count, never to undo.
func (r *Recorder) Record(ctx context.Context, entry *models.ActivityEntry) error {
	b := retry.WithMaxRetries(r.attempts-1, retry.NewExponential(r.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := r.store.AppendActivity(ctx, entry)
		if errors.Is(err, errs.ErrStoreUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to append activity entry",
			"type", entry.Type,
			"actor", entry.Actor,
			"record_id", entry.RecordID,
			"error", err,
		)
	}
	return err
}

// Feed returns the entries visible to user, newest first. A store outage
// degrades to an empty feed with a warning.
func (r *Recorder) Feed(ctx context.Context, user string) ([]models.ActivityEntry, error) {
	entries, err := r.store.ListActivityFor(ctx, user)
	if errors.Is(err, errs.ErrStoreUnavailable) {
		r.logger.Warn("activity feed unavailable, returning empty list", "user", user, "error", err)
		return []models.ActivityEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	visible := entries[:0]
	for i := range entries {
		if Visible(&entries[i], user) {
			visible = append(visible, entries[i])
		}
	}
	return visible, nil
}

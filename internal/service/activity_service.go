package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/ledger"
)

// ActivityService serves the caller's activity feed.
type ActivityService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewActivityService creates an ActivityService over the ledger.
func NewActivityService(l *ledger.Service, logger *slog.Logger) *ActivityService {
	return &ActivityService{ledger: l, logger: logger}
}

// ListActivity returns the entries visible to the caller, newest first.
func (s *ActivityService) ListActivity(ctx context.Context, req *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Limit < 0 {
		return nil, toConnectError(errs.Validation("limit must not be negative"))
	}

	entries, err := s.ledger.ListActivity(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.Limit > 0 && len(entries) > req.Msg.Limit {
		entries = entries[:req.Msg.Limit]
	}
	return connect.NewResponse(&ListActivityResponse{Entries: entries}), nil
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/calculator"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/ledger"
	"github.com/mmynk/splitify/internal/models"
)

// QueryService serves the derived balance views.
type QueryService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewQueryService creates a QueryService over the ledger.
func NewQueryService(l *ledger.Service, logger *slog.Logger) *QueryService {
	return &QueryService{ledger: l, logger: logger}
}

// GetDashboardSummary returns the caller's friend and group balances with totals.
func (s *QueryService) GetDashboardSummary(ctx context.Context, req *connect.Request[GetDashboardSummaryRequest]) (*connect.Response[GetDashboardSummaryResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := s.ledger.GetDashboardSummary(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetDashboardSummaryResponse{Summary: roundSummary(summary)}), nil
}

func (s *QueryService) GetFriendHistory(ctx context.Context, req *connect.Request[GetFriendHistoryRequest]) (*connect.Response[GetFriendHistoryResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	h, err := s.ledger.GetFriendExpenseHistory(ctx, caller, req.Msg.Phone)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetFriendHistoryResponse{History: roundHistory(h)}), nil
}

// GetOutstandingAmount returns what a friend owes the caller together with
// the friend's display name, for composing a reminder.
func (s *QueryService) GetOutstandingAmount(ctx context.Context, req *connect.Request[GetOutstandingAmountRequest]) (*connect.Response[GetOutstandingAmountResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := s.ledger.GetOutstandingAmount(ctx, caller, req.Msg.Phone)
	if err != nil {
		return nil, toConnectError(err)
	}

	phone := models.NormalizePhone(req.Msg.Phone)
	name, err := s.ledger.GetUserDisplayName(ctx, phone)
	if errors.Is(err, errs.ErrUserNotFound) {
		name = models.FormatPhone(phone)
	} else if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetOutstandingAmountResponse{
		Phone:  phone,
		Name:   name,
		Amount: calculator.Round(amount),
	}), nil
}

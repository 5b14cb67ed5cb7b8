package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/ledger"
)

// ExpenseService records expenses and settlements.
type ExpenseService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewExpenseService creates an ExpenseService over the ledger.
func NewExpenseService(l *ledger.Service, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{ledger: l, logger: logger}
}

// RecordExpense records a direct expense split equally among its participants.
func (s *ExpenseService) RecordExpense(ctx context.Context, req *connect.Request[ledger.DirectExpenseInput]) (*connect.Response[RecordExpenseResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.ledger.RecordDirectExpense(ctx, caller, *req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordExpenseResponse{Expense: *e}), nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.DeleteExpense(ctx, caller, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteExpenseResponse{}), nil
}

// RecordGroupExpense records an equal or custom split inside a group.
func (s *ExpenseService) RecordGroupExpense(ctx context.Context, req *connect.Request[ledger.GroupExpenseInput]) (*connect.Response[RecordGroupExpenseResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("RecordGroupExpense request received",
		"group_id", req.Msg.GroupID,
		"split_mode", req.Msg.SplitMode,
	)

	e, err := s.ledger.RecordGroupExpense(ctx, caller, *req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordGroupExpenseResponse{Expense: *e}), nil
}

// RecordSettlement records a payment between the caller and another user.
func (s *ExpenseService) RecordSettlement(ctx context.Context, req *connect.Request[ledger.SettlementInput]) (*connect.Response[RecordSettlementResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.ledger.RecordSettlement(ctx, caller, *req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RecordSettlementResponse{Settlement: *st}), nil
}

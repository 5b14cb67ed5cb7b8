package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/ledger"
)

// UserService registers callers and resolves display names.
type UserService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewUserService creates a UserService over the ledger.
func NewUserService(l *ledger.Service, logger *slog.Logger) *UserService {
	return &UserService{ledger: l, logger: logger}
}

// Register records the caller's identity from their token. Clients call it
// after sign-in and whenever the display name changes.
func (s *UserService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Name != "" {
		caller.Name = req.Msg.Name
	}

	user, err := s.ledger.RegisterUser(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RegisterResponse{User: *user}), nil
}

// GetDisplayName returns a registered user's current name.
func (s *UserService) GetDisplayName(ctx context.Context, req *connect.Request[GetDisplayNameRequest]) (*connect.Response[GetDisplayNameResponse], error) {
	if _, err := callerFrom(ctx); err != nil {
		return nil, err
	}
	name, err := s.ledger.GetUserDisplayName(ctx, req.Msg.Phone)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetDisplayNameResponse{Phone: req.Msg.Phone, Name: name}), nil
}

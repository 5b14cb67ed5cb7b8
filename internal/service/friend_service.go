package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/ledger"
)

// FriendService manages the caller's friendships.
type FriendService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewFriendService creates a FriendService over the ledger.
func NewFriendService(l *ledger.Service, logger *slog.Logger) *FriendService {
	return &FriendService{ledger: l, logger: logger}
}

// AddFriend befriends a registered user by phone.
func (s *FriendService) AddFriend(ctx context.Context, req *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	f, err := s.ledger.AddFriend(ctx, caller, req.Msg.Phone)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AddFriendResponse{Friendship: *f}), nil
}

// RemoveFriend ends a friendship. Shared expenses stay.
func (s *FriendService) RemoveFriend(ctx context.Context, req *connect.Request[RemoveFriendRequest]) (*connect.Response[RemoveFriendResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.RemoveFriend(ctx, caller, req.Msg.Phone); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RemoveFriendResponse{}), nil
}

func (s *FriendService) ListFriends(ctx context.Context, req *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	friends, err := s.ledger.ListFriends(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListFriendsResponse{Friends: friends}), nil
}

// SuggestFriends matches the caller's contacts against registered users.
func (s *FriendService) SuggestFriends(ctx context.Context, req *connect.Request[SuggestFriendsRequest]) (*connect.Response[SuggestFriendsResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("SuggestFriends request received", "contacts", len(req.Msg.Contacts))

	suggestions, err := s.ledger.SuggestFriends(ctx, caller, req.Msg.Contacts)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SuggestFriendsResponse{Suggestions: suggestions}), nil
}

package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/ledger"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	ledger *ledger.Service
	logger *slog.Logger
}

// NewGroupService creates a GroupService over the ledger.
func NewGroupService(l *ledger.Service, logger *slog.Logger) *GroupService {
	return &GroupService{ledger: l, logger: logger}
}

// CreateGroup creates a new group with the caller as creator and member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	g, err := s.ledger.CreateGroup(ctx, caller, req.Msg.Name, req.Msg.Members)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&CreateGroupResponse{Group: *g}), nil
}

// LeaveGroup removes the caller from a group.
func (s *GroupService) LeaveGroup(ctx context.Context, req *connect.Request[LeaveGroupRequest]) (*connect.Response[LeaveGroupResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.LeaveGroup(ctx, caller, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&LeaveGroupResponse{}), nil
}

// DeleteGroup deletes a group and its expenses.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.DeleteGroup(ctx, caller, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DeleteGroupResponse{}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.ledger.ListGroups(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ListGroupsResponse{Groups: groups}), nil
}

// GetGroupDetail returns a group's ledger with balances rounded to cents.
func (s *GroupService) GetGroupDetail(ctx context.Context, req *connect.Request[GetGroupDetailRequest]) (*connect.Response[GetGroupDetailResponse], error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	detail, err := s.ledger.GetGroupDetail(ctx, caller, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetGroupDetailResponse{Detail: roundDetail(detail)}), nil
}

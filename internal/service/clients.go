package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/ledger"
	"github.com/mmynk/splitify/pkg/jsoncodec"
)

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(jsoncodec.Codec{})}, opts...)
}

// Client calls every splitify RPC over HTTP with JSON bodies.
type Client struct {
	register             *connect.Client[RegisterRequest, RegisterResponse]
	getDisplayName       *connect.Client[GetDisplayNameRequest, GetDisplayNameResponse]
	addFriend            *connect.Client[AddFriendRequest, AddFriendResponse]
	removeFriend         *connect.Client[RemoveFriendRequest, RemoveFriendResponse]
	listFriends          *connect.Client[ListFriendsRequest, ListFriendsResponse]
	suggestFriends       *connect.Client[SuggestFriendsRequest, SuggestFriendsResponse]
	recordExpense        *connect.Client[ledger.DirectExpenseInput, RecordExpenseResponse]
	deleteExpense        *connect.Client[DeleteExpenseRequest, DeleteExpenseResponse]
	recordGroupExpense   *connect.Client[ledger.GroupExpenseInput, RecordGroupExpenseResponse]
	recordSettlement     *connect.Client[ledger.SettlementInput, RecordSettlementResponse]
	createGroup          *connect.Client[CreateGroupRequest, CreateGroupResponse]
	leaveGroup           *connect.Client[LeaveGroupRequest, LeaveGroupResponse]
	deleteGroup          *connect.Client[DeleteGroupRequest, DeleteGroupResponse]
	listGroups           *connect.Client[ListGroupsRequest, ListGroupsResponse]
	getGroupDetail       *connect.Client[GetGroupDetailRequest, GetGroupDetailResponse]
	getDashboardSummary  *connect.Client[GetDashboardSummaryRequest, GetDashboardSummaryResponse]
	getFriendHistory     *connect.Client[GetFriendHistoryRequest, GetFriendHistoryResponse]
	getOutstandingAmount *connect.Client[GetOutstandingAmountRequest, GetOutstandingAmountResponse]
	listActivity         *connect.Client[ListActivityRequest, ListActivityResponse]
}

// NewClient creates a client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &Client{
		register:             connect.NewClient[RegisterRequest, RegisterResponse](httpClient, baseURL+UserServiceRegisterProcedure, opts...),
		getDisplayName:       connect.NewClient[GetDisplayNameRequest, GetDisplayNameResponse](httpClient, baseURL+UserServiceGetDisplayNameProcedure, opts...),
		addFriend:            connect.NewClient[AddFriendRequest, AddFriendResponse](httpClient, baseURL+FriendServiceAddFriendProcedure, opts...),
		removeFriend:         connect.NewClient[RemoveFriendRequest, RemoveFriendResponse](httpClient, baseURL+FriendServiceRemoveFriendProcedure, opts...),
		listFriends:          connect.NewClient[ListFriendsRequest, ListFriendsResponse](httpClient, baseURL+FriendServiceListFriendsProcedure, opts...),
		suggestFriends:       connect.NewClient[SuggestFriendsRequest, SuggestFriendsResponse](httpClient, baseURL+FriendServiceSuggestFriendsProcedure, opts...),
		recordExpense:        connect.NewClient[ledger.DirectExpenseInput, RecordExpenseResponse](httpClient, baseURL+ExpenseServiceRecordExpenseProcedure, opts...),
		deleteExpense:        connect.NewClient[DeleteExpenseRequest, DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		recordGroupExpense:   connect.NewClient[ledger.GroupExpenseInput, RecordGroupExpenseResponse](httpClient, baseURL+ExpenseServiceRecordGroupExpenseProcedure, opts...),
		recordSettlement:     connect.NewClient[ledger.SettlementInput, RecordSettlementResponse](httpClient, baseURL+ExpenseServiceRecordSettlementProcedure, opts...),
		createGroup:          connect.NewClient[CreateGroupRequest, CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		leaveGroup:           connect.NewClient[LeaveGroupRequest, LeaveGroupResponse](httpClient, baseURL+GroupServiceLeaveGroupProcedure, opts...),
		deleteGroup:          connect.NewClient[DeleteGroupRequest, DeleteGroupResponse](httpClient, baseURL+GroupServiceDeleteGroupProcedure, opts...),
		listGroups:           connect.NewClient[ListGroupsRequest, ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		getGroupDetail:       connect.NewClient[GetGroupDetailRequest, GetGroupDetailResponse](httpClient, baseURL+GroupServiceGetGroupDetailProcedure, opts...),
		getDashboardSummary:  connect.NewClient[GetDashboardSummaryRequest, GetDashboardSummaryResponse](httpClient, baseURL+QueryServiceGetDashboardSummaryProcedure, opts...),
		getFriendHistory:     connect.NewClient[GetFriendHistoryRequest, GetFriendHistoryResponse](httpClient, baseURL+QueryServiceGetFriendHistoryProcedure, opts...),
		getOutstandingAmount: connect.NewClient[GetOutstandingAmountRequest, GetOutstandingAmountResponse](httpClient, baseURL+QueryServiceGetOutstandingAmountProcedure, opts...),
		listActivity:         connect.NewClient[ListActivityRequest, ListActivityResponse](httpClient, baseURL+ActivityServiceListActivityProcedure, opts...),
	}
}

func (c *Client) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *Client) GetDisplayName(ctx context.Context, req *connect.Request[GetDisplayNameRequest]) (*connect.Response[GetDisplayNameResponse], error) {
	return c.getDisplayName.CallUnary(ctx, req)
}

func (c *Client) AddFriend(ctx context.Context, req *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error) {
	return c.addFriend.CallUnary(ctx, req)
}

func (c *Client) RemoveFriend(ctx context.Context, req *connect.Request[RemoveFriendRequest]) (*connect.Response[RemoveFriendResponse], error) {
	return c.removeFriend.CallUnary(ctx, req)
}

func (c *Client) ListFriends(ctx context.Context, req *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error) {
	return c.listFriends.CallUnary(ctx, req)
}

func (c *Client) SuggestFriends(ctx context.Context, req *connect.Request[SuggestFriendsRequest]) (*connect.Response[SuggestFriendsResponse], error) {
	return c.suggestFriends.CallUnary(ctx, req)
}

func (c *Client) RecordExpense(ctx context.Context, req *connect.Request[ledger.DirectExpenseInput]) (*connect.Response[RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *Client) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *Client) RecordGroupExpense(ctx context.Context, req *connect.Request[ledger.GroupExpenseInput]) (*connect.Response[RecordGroupExpenseResponse], error) {
	return c.recordGroupExpense.CallUnary(ctx, req)
}

func (c *Client) RecordSettlement(ctx context.Context, req *connect.Request[ledger.SettlementInput]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *Client) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *Client) LeaveGroup(ctx context.Context, req *connect.Request[LeaveGroupRequest]) (*connect.Response[LeaveGroupResponse], error) {
	return c.leaveGroup.CallUnary(ctx, req)
}

func (c *Client) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

func (c *Client) ListGroups(ctx context.Context, req *connect.Request[ListGroupsRequest]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *Client) GetGroupDetail(ctx context.Context, req *connect.Request[GetGroupDetailRequest]) (*connect.Response[GetGroupDetailResponse], error) {
	return c.getGroupDetail.CallUnary(ctx, req)
}

func (c *Client) GetDashboardSummary(ctx context.Context, req *connect.Request[GetDashboardSummaryRequest]) (*connect.Response[GetDashboardSummaryResponse], error) {
	return c.getDashboardSummary.CallUnary(ctx, req)
}

func (c *Client) GetFriendHistory(ctx context.Context, req *connect.Request[GetFriendHistoryRequest]) (*connect.Response[GetFriendHistoryResponse], error) {
	return c.getFriendHistory.CallUnary(ctx, req)
}

func (c *Client) GetOutstandingAmount(ctx context.Context, req *connect.Request[GetOutstandingAmountRequest]) (*connect.Response[GetOutstandingAmountResponse], error) {
	return c.getOutstandingAmount.CallUnary(ctx, req)
}

func (c *Client) ListActivity(ctx context.Context, req *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

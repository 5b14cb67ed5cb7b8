package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/ledger"
	"github.com/mmynk/splitify/pkg/jsoncodec"
)

// handlerOptions puts the JSON codec in front of the caller's options.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(jsoncodec.Codec{})}, opts...)
}

// readOnly marks a procedure side-effect free, which also exempts it from
// idempotency keys.
func readOnly(opts []connect.HandlerOption) []connect.HandlerOption {
	out := make([]connect.HandlerOption, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, connect.WithIdempotency(connect.IdempotencyNoSideEffects))
}

// NewUserServiceHandler builds the HTTP handler for UserService and returns
// the path prefix to mount it on.
func NewUserServiceHandler(svc *UserService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(UserServiceRegisterProcedure, connect.NewUnaryHandler(UserServiceRegisterProcedure, svc.Register, opts...))
	mux.Handle(UserServiceGetDisplayNameProcedure, connect.NewUnaryHandler(UserServiceGetDisplayNameProcedure, svc.GetDisplayName, readOnly(opts)...))
	return "/" + UserServiceName + "/", mux
}

// NewFriendServiceHandler builds the HTTP handler for FriendService.
func NewFriendServiceHandler(svc *FriendService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(FriendServiceAddFriendProcedure, connect.NewUnaryHandler(FriendServiceAddFriendProcedure, svc.AddFriend, opts...))
	mux.Handle(FriendServiceRemoveFriendProcedure, connect.NewUnaryHandler(FriendServiceRemoveFriendProcedure, svc.RemoveFriend, opts...))
	mux.Handle(FriendServiceListFriendsProcedure, connect.NewUnaryHandler(FriendServiceListFriendsProcedure, svc.ListFriends, readOnly(opts)...))
	mux.Handle(FriendServiceSuggestFriendsProcedure, connect.NewUnaryHandler(FriendServiceSuggestFriendsProcedure, svc.SuggestFriends, readOnly(opts)...))
	return "/" + FriendServiceName + "/", mux
}

// NewExpenseServiceHandler builds the HTTP handler for ExpenseService.
func NewExpenseServiceHandler(svc *ExpenseService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ExpenseServiceRecordExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceRecordExpenseProcedure, svc.RecordExpense, opts...))
	mux.Handle(ExpenseServiceDeleteExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(ExpenseServiceRecordGroupExpenseProcedure, connect.NewUnaryHandler(ExpenseServiceRecordGroupExpenseProcedure, svc.RecordGroupExpense, opts...))
	mux.Handle(ExpenseServiceRecordSettlementProcedure, connect.NewUnaryHandler(ExpenseServiceRecordSettlementProcedure, svc.RecordSettlement, opts...))
	return "/" + ExpenseServiceName + "/", mux
}

// NewGroupServiceHandler builds the HTTP handler for GroupService.
func NewGroupServiceHandler(svc *GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceLeaveGroupProcedure, connect.NewUnaryHandler(GroupServiceLeaveGroupProcedure, svc.LeaveGroup, opts...))
	mux.Handle(GroupServiceDeleteGroupProcedure, connect.NewUnaryHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts...))
	mux.Handle(GroupServiceListGroupsProcedure, connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, readOnly(opts)...))
	mux.Handle(GroupServiceGetGroupDetailProcedure, connect.NewUnaryHandler(GroupServiceGetGroupDetailProcedure, svc.GetGroupDetail, readOnly(opts)...))
	return "/" + GroupServiceName + "/", mux
}

// NewQueryServiceHandler builds the HTTP handler for QueryService.
func NewQueryServiceHandler(svc *QueryService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(QueryServiceGetDashboardSummaryProcedure, connect.NewUnaryHandler(QueryServiceGetDashboardSummaryProcedure, svc.GetDashboardSummary, readOnly(opts)...))
	mux.Handle(QueryServiceGetFriendHistoryProcedure, connect.NewUnaryHandler(QueryServiceGetFriendHistoryProcedure, svc.GetFriendHistory, readOnly(opts)...))
	mux.Handle(QueryServiceGetOutstandingAmountProcedure, connect.NewUnaryHandler(QueryServiceGetOutstandingAmountProcedure, svc.GetOutstandingAmount, readOnly(opts)...))
	return "/" + QueryServiceName + "/", mux
}

// NewActivityServiceHandler builds the HTTP handler for ActivityService.
func NewActivityServiceHandler(svc *ActivityService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ActivityServiceListActivityProcedure, connect.NewUnaryHandler(ActivityServiceListActivityProcedure, svc.ListActivity, readOnly(opts)...))
	return "/" + ActivityServiceName + "/", mux
}

// NewHandler mounts every RPC service over l on one mux.
func NewHandler(l *ledger.Service, logger *slog.Logger, opts ...connect.HandlerOption) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle(NewUserServiceHandler(NewUserService(l, logger), opts...))
	mux.Handle(NewFriendServiceHandler(NewFriendService(l, logger), opts...))
	mux.Handle(NewExpenseServiceHandler(NewExpenseService(l, logger), opts...))
	mux.Handle(NewGroupServiceHandler(NewGroupService(l, logger), opts...))
	mux.Handle(NewQueryServiceHandler(NewQueryService(l, logger), opts...))
	mux.Handle(NewActivityServiceHandler(NewActivityService(l, logger), opts...))
	return mux
}

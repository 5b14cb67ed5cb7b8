package service

// Fully-qualified service names.
const (
	UserServiceName     = "splitify.v1.UserService"
	FriendServiceName   = "splitify.v1.FriendService"
	ExpenseServiceName  = "splitify.v1.ExpenseService"
	GroupServiceName    = "splitify.v1.GroupService"
	QueryServiceName    = "splitify.v1.QueryService"
	ActivityServiceName = "splitify.v1.ActivityService"
)

// Procedure paths, in the form /<service>/<method>.
const (
	UserServiceRegisterProcedure       = "/splitify.v1.UserService/Register"
	UserServiceGetDisplayNameProcedure = "/splitify.v1.UserService/GetDisplayName"

	FriendServiceAddFriendProcedure      = "/splitify.v1.FriendService/AddFriend"
	FriendServiceRemoveFriendProcedure   = "/splitify.v1.FriendService/RemoveFriend"
	FriendServiceListFriendsProcedure    = "/splitify.v1.FriendService/ListFriends"
	FriendServiceSuggestFriendsProcedure = "/splitify.v1.FriendService/SuggestFriends"

	ExpenseServiceRecordExpenseProcedure      = "/splitify.v1.ExpenseService/RecordExpense"
	ExpenseServiceDeleteExpenseProcedure      = "/splitify.v1.ExpenseService/DeleteExpense"
	ExpenseServiceRecordGroupExpenseProcedure = "/splitify.v1.ExpenseService/RecordGroupExpense"
	ExpenseServiceRecordSettlementProcedure   = "/splitify.v1.ExpenseService/RecordSettlement"

	GroupServiceCreateGroupProcedure    = "/splitify.v1.GroupService/CreateGroup"
	GroupServiceLeaveGroupProcedure     = "/splitify.v1.GroupService/LeaveGroup"
	GroupServiceDeleteGroupProcedure    = "/splitify.v1.GroupService/DeleteGroup"
	GroupServiceListGroupsProcedure     = "/splitify.v1.GroupService/ListGroups"
	GroupServiceGetGroupDetailProcedure = "/splitify.v1.GroupService/GetGroupDetail"

	QueryServiceGetDashboardSummaryProcedure  = "/splitify.v1.QueryService/GetDashboardSummary"
	QueryServiceGetFriendHistoryProcedure     = "/splitify.v1.QueryService/GetFriendHistory"
	QueryServiceGetOutstandingAmountProcedure = "/splitify.v1.QueryService/GetOutstandingAmount"

	ActivityServiceListActivityProcedure = "/splitify.v1.ActivityService/ListActivity"
)

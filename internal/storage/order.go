package storage

import (
	"cmp"
	"slices"
	"sort"

	"github.com/mmynk/splitify/internal/models"
)

// SortExpenses orders direct expenses newest first by date, then by creation time.
func SortExpenses(list []models.Expense) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].CreatedAt > list[j].CreatedAt
	})
}

// SortGroupExpenses orders group expenses newest first by date, then by creation time.
func SortGroupExpenses(list []models.GroupExpense) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].CreatedAt > list[j].CreatedAt
	})
}

// SortSettlements orders settlements newest first.
func SortSettlements(list []models.Settlement) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt > list[j].CreatedAt
	})
}

// SortActivity orders entries newest first by timestamp; entries sharing a
// timestamp are ordered by insertion, latest first.
func SortActivity(list []models.ActivityEntry) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp != list[j].Timestamp {
			return list[i].Timestamp > list[j].Timestamp
		}
		return list[i].Seq > list[j].Seq
	})
}

// SortFriends orders friends by snapshot name, then phone.
func SortFriends(friends []models.Friend) {
	slices.SortFunc(friends, func(a, b models.Friend) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Phone, b.Phone)
	})
}

package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mmynk/splitify/internal/models"
)

// Documents mirror the models with bson tags. Amounts are Decimal128 so
// the database can aggregate them without float rounding.

type userDoc struct {
	Phone     string `bson:"_id"`
	Name      string `bson:"name"`
	UID       string `bson:"uid,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

type friendshipDoc struct {
	ID        string            `bson:"_id"`
	UserA     string            `bson:"user_a"`
	UserB     string            `bson:"user_b"`
	Metadata  map[string]string `bson:"metadata"`
	CreatedAt int64             `bson:"created_at"`
}

type expenseDoc struct {
	ID           string               `bson:"_id"`
	PaidBy       string               `bson:"paid_by"`
	Participants []string             `bson:"participants"`
	Amount       primitive.Decimal128 `bson:"amount"`
	Category     string               `bson:"category,omitempty"`
	Reason       string               `bson:"reason"`
	Date         time.Time            `bson:"date"`
	CreatedAt    int64                `bson:"created_at"`
}

type memberDoc struct {
	Phone string `bson:"phone"`
	Name  string `bson:"name"`
}

type groupDoc struct {
	ID        string      `bson:"_id"`
	Name      string      `bson:"name"`
	Members   []memberDoc `bson:"members"`
	MemberIDs []string    `bson:"member_ids"`
	Former    []memberDoc `bson:"former_members,omitempty"`
	CreatedBy string      `bson:"created_by"`
	CreatedAt int64       `bson:"created_at"`
}

type splitDoc struct {
	Phone  string               `bson:"phone"`
	Name   string               `bson:"name"`
	Amount primitive.Decimal128 `bson:"amount"`
}

type groupExpenseDoc struct {
	ID         string               `bson:"_id"`
	GroupID    string               `bson:"group_id"`
	Total      primitive.Decimal128 `bson:"total"`
	Reason     string               `bson:"reason"`
	Date       time.Time            `bson:"date"`
	PaidBy     string               `bson:"paid_by"`
	PaidByName string               `bson:"paid_by_name"`
	SplitMode  string               `bson:"split_mode"`
	Splits     []splitDoc           `bson:"splits"`
	CreatedAt  int64                `bson:"created_at"`
}

type settlementDoc struct {
	ID        string               `bson:"_id"`
	From      string               `bson:"from"`
	To        string               `bson:"to"`
	Amount    primitive.Decimal128 `bson:"amount"`
	Method    string               `bson:"method"`
	GroupID   string               `bson:"group_id,omitempty"`
	Note      string               `bson:"note,omitempty"`
	CreatedAt int64                `bson:"created_at"`
}

type activityDoc struct {
	ID           string               `bson:"_id"`
	Seq          int64                `bson:"seq"`
	Type         string               `bson:"type"`
	Actor        string               `bson:"actor"`
	Target       string               `bson:"target,omitempty"`
	Participants []string             `bson:"participants,omitempty"`
	GroupID      string               `bson:"group_id,omitempty"`
	RecordID     string               `bson:"record_id,omitempty"`
	Description  string               `bson:"description"`
	Amount       primitive.Decimal128 `bson:"amount"`
	Timestamp    int64                `bson:"timestamp"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("failed to convert amount %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored amount %s: %w", v, err)
	}
	return d, nil
}

func newExpenseDoc(e *models.Expense) (expenseDoc, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return expenseDoc{}, err
	}
	return expenseDoc{
		ID:           e.ID,
		PaidBy:       e.PaidBy,
		Participants: e.Participants,
		Amount:       amount,
		Category:     e.Category,
		Reason:       e.Reason,
		Date:         e.Date.UTC(),
		CreatedAt:    e.CreatedAt,
	}, nil
}

func (d expenseDoc) model() (models.Expense, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.Expense{}, err
	}
	return models.Expense{
		ID:           d.ID,
		PaidBy:       d.PaidBy,
		Participants: d.Participants,
		Amount:       amount,
		Category:     d.Category,
		Reason:       d.Reason,
		Date:         d.Date.UTC(),
		CreatedAt:    d.CreatedAt,
	}, nil
}

func newGroupDoc(g *models.Group) groupDoc {
	return groupDoc{
		ID:        g.ID,
		Name:      g.Name,
		Members:   toMemberDocs(g.Members),
		MemberIDs: g.MemberPhones(),
		Former:    toMemberDocs(g.FormerMembers),
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

func toMemberDocs(members []models.Member) []memberDoc {
	out := make([]memberDoc, len(members))
	for i, m := range members {
		out[i] = memberDoc{Phone: m.Phone, Name: m.Name}
	}
	return out
}

func fromMemberDocs(docs []memberDoc) []models.Member {
	out := make([]models.Member, len(docs))
	for i, m := range docs {
		out[i] = models.Member{Phone: m.Phone, Name: m.Name}
	}
	return out
}

func (d groupDoc) model() models.Group {
	g := models.Group{
		ID:        d.ID,
		Name:      d.Name,
		Members:   fromMemberDocs(d.Members),
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Former) > 0 {
		g.FormerMembers = fromMemberDocs(d.Former)
	}
	return g
}

func newGroupExpenseDoc(e *models.GroupExpense) (groupExpenseDoc, error) {
	total, err := toDecimal128(e.Total)
	if err != nil {
		return groupExpenseDoc{}, err
	}
	splits := make([]splitDoc, len(e.Splits))
	for i, sp := range e.Splits {
		amount, err := toDecimal128(sp.Amount)
		if err != nil {
			return groupExpenseDoc{}, err
		}
		splits[i] = splitDoc{Phone: sp.Phone, Name: sp.Name, Amount: amount}
	}
	return groupExpenseDoc{
		ID:         e.ID,
		GroupID:    e.GroupID,
		Total:      total,
		Reason:     e.Reason,
		Date:       e.Date.UTC(),
		PaidBy:     e.PaidBy,
		PaidByName: e.PaidByName,
		SplitMode:  string(e.SplitMode),
		Splits:     splits,
		CreatedAt:  e.CreatedAt,
	}, nil
}

func (d groupExpenseDoc) model() (models.GroupExpense, error) {
	total, err := fromDecimal128(d.Total)
	if err != nil {
		return models.GroupExpense{}, err
	}
	splits := make([]models.Split, len(d.Splits))
	for i, sp := range d.Splits {
		amount, err := fromDecimal128(sp.Amount)
		if err != nil {
			return models.GroupExpense{}, err
		}
		splits[i] = models.Split{Phone: sp.Phone, Name: sp.Name, Amount: amount}
	}
	return models.GroupExpense{
		ID:         d.ID,
		GroupID:    d.GroupID,
		Total:      total,
		Reason:     d.Reason,
		Date:       d.Date.UTC(),
		PaidBy:     d.PaidBy,
		PaidByName: d.PaidByName,
		SplitMode:  models.SplitMode(d.SplitMode),
		Splits:     splits,
		CreatedAt:  d.CreatedAt,
	}, nil
}

func newSettlementDoc(s *models.Settlement) (settlementDoc, error) {
	amount, err := toDecimal128(s.Amount)
	if err != nil {
		return settlementDoc{}, err
	}
	return settlementDoc{
		ID:        s.ID,
		From:      s.From,
		To:        s.To,
		Amount:    amount,
		Method:    string(s.Method),
		GroupID:   s.GroupID,
		Note:      s.Note,
		CreatedAt: s.CreatedAt,
	}, nil
}

func (d settlementDoc) model() (models.Settlement, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.Settlement{}, err
	}
	return models.Settlement{
		ID:        d.ID,
		From:      d.From,
		To:        d.To,
		Amount:    amount,
		Method:    models.SettlementMethod(d.Method),
		GroupID:   d.GroupID,
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
	}, nil
}

func newActivityDoc(e *models.ActivityEntry) (activityDoc, error) {
	amount, err := toDecimal128(e.Amount)
	if err != nil {
		return activityDoc{}, err
	}
	return activityDoc{
		ID:           e.ID,
		Seq:          e.Seq,
		Type:         string(e.Type),
		Actor:        e.Actor,
		Target:       e.Target,
		Participants: e.Participants,
		GroupID:      e.GroupID,
		RecordID:     e.RecordID,
		Description:  e.Description,
		Amount:       amount,
		Timestamp:    e.Timestamp,
	}, nil
}

func (d activityDoc) model() (models.ActivityEntry, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return models.ActivityEntry{}, err
	}
	return models.ActivityEntry{
		ID:           d.ID,
		Seq:          d.Seq,
		Type:         models.ActivityType(d.Type),
		Actor:        d.Actor,
		Target:       d.Target,
		Participants: d.Participants,
		GroupID:      d.GroupID,
		RecordID:     d.RecordID,
		Description:  d.Description,
		Amount:       amount,
		Timestamp:    d.Timestamp,
	}, nil
}

// Package mongostore implements storage.Store on MongoDB.
//
// Each record kind lives in its own collection. Friendships use the unordered
// pair key as _id, so the unique index on _id turns a concurrent duplicate add
// into a duplicate-key error instead of a second document.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/models"
	"github.com/mmynk/splitify/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

const (
	collUsers         = "users"
	collFriendships   = "friendships"
	collExpenses      = "expenses"
	collGroups        = "groups"
	collGroupExpenses = "group_expenses"
	collSettlements   = "settlements"
	collActivity      = "activity_logs"
	collCounters      = "counters"
)

// Store manages ledger records in a MongoDB database.
type Store struct {
	client        *mongo.Client
	users         *mongo.Collection
	friendships   *mongo.Collection
	expenses      *mongo.Collection
	groups        *mongo.Collection
	groupExpenses *mongo.Collection
	settlements   *mongo.Collection
	activity      *mongo.Collection
	counters      *mongo.Collection
}

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := New(client.Database(database))
	s.client = client
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	return s, nil
}

// New creates a Store over an existing database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		users:         db.Collection(collUsers),
		friendships:   db.Collection(collFriendships),
		expenses:      db.Collection(collExpenses),
		groups:        db.Collection(collGroups),
		groupExpenses: db.Collection(collGroupExpenses),
		settlements:   db.Collection(collSettlements),
		activity:      db.Collection(collActivity),
		counters:      db.Collection(collCounters),
	}
}

// EnsureIndexes creates the indexes the read paths rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		c       *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{s.friendships, []mongo.IndexModel{
			{Keys: bson.D{{Key: "user_a", Value: 1}}},
			{Keys: bson.D{{Key: "user_b", Value: 1}}},
		}},
		{s.expenses, []mongo.IndexModel{
			{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "date", Value: -1}}},
		}},
		{s.groups, []mongo.IndexModel{
			{Keys: bson.D{{Key: "member_ids", Value: 1}}},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		}},
		{s.groupExpenses, []mongo.IndexModel{
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "date", Value: -1}}},
		}},
		{s.settlements, []mongo.IndexModel{
			{Keys: bson.D{{Key: "from", Value: 1}}},
			{Keys: bson.D{{Key: "to", Value: 1}}},
			{Keys: bson.D{{Key: "group_id", Value: 1}}},
		}},
		{s.activity, []mongo.IndexModel{
			{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "actor", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "target", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "timestamp", Value: -1}}},
		}},
	}
	for _, spec := range specs {
		if _, err := spec.c.Indexes().CreateMany(ctx, spec.indexes); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", spec.c.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client when the store owns it.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// CreateUser implements storage.Store.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	_, err := s.users.UpdateOne(ctx,
		bson.M{"_id": user.Phone},
		bson.M{
			"$set":         bson.M{"name": user.Name},
			"$setOnInsert": bson.M{"uid": user.UID, "created_at": user.CreatedAt},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errs.Unavailable("upsert user", err)
	}
	return nil
}

// GetUser implements storage.Store.
func (s *Store) GetUser(ctx context.Context, phone string) (*models.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.M{"_id": phone}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user %s", errs.ErrNotFound, phone)
	}
	if err != nil {
		return nil, errs.Unavailable("get user", err)
	}
	return &models.User{Phone: doc.Phone, Name: doc.Name, UID: doc.UID, CreatedAt: doc.CreatedAt}, nil
}

// GetUsersByPhones implements storage.Store.
func (s *Store) GetUsersByPhones(ctx context.Context, phones []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User)
	if len(phones) == 0 {
		return users, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": phones}})
	if err != nil {
		return nil, errs.Unavailable("get users by phones", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode users", err)
	}
	for _, d := range docs {
		users[d.Phone] = &models.User{Phone: d.Phone, Name: d.Name, UID: d.UID, CreatedAt: d.CreatedAt}
	}
	return users, nil
}

// AddFriendship implements storage.Store.
func (s *Store) AddFriendship(ctx context.Context, f *models.Friendship) error {
	f.ID = models.FriendshipKey(f.UserA, f.UserB)
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}
	_, err := s.friendships.InsertOne(ctx, friendshipDoc{
		ID:        f.ID,
		UserA:     f.UserA,
		UserB:     f.UserB,
		Metadata:  f.Metadata,
		CreatedAt: f.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s and %s are already friends", errs.ErrDuplicateFriendship, f.UserA, f.UserB)
	}
	if err != nil {
		return errs.Unavailable("insert friendship", err)
	}
	return nil
}

// RemoveFriendship implements storage.Store.
func (s *Store) RemoveFriendship(ctx context.Context, a, b string) error {
	res, err := s.friendships.DeleteOne(ctx, bson.M{"_id": models.FriendshipKey(a, b)})
	if err != nil {
		return errs.Unavailable("delete friendship", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: no friendship between %s and %s", errs.ErrNotFound, a, b)
	}
	return nil
}

// ListFriendsOf implements storage.Store.
func (s *Store) ListFriendsOf(ctx context.Context, user string) ([]models.Friend, error) {
	cur, err := s.friendships.Find(ctx,
		bson.M{"$or": bson.A{bson.M{"user_a": user}, bson.M{"user_b": user}}},
	)
	if err != nil {
		return nil, errs.Unavailable("list friends", err)
	}
	var docs []friendshipDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode friendships", err)
	}

	friends := make([]models.Friend, 0, len(docs))
	for _, d := range docs {
		other := d.UserA
		if d.UserA == user {
			other = d.UserB
		}
		friends = append(friends, models.Friend{Phone: other, Name: d.Metadata[other]})
	}
	storage.SortFriends(friends)
	return friends, nil
}

// AddExpense implements storage.Store.
func (s *Store) AddExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	doc, err := newExpenseDoc(e)
	if err != nil {
		return err
	}
	if _, err := s.expenses.InsertOne(ctx, doc); err != nil {
		return errs.Unavailable("insert expense", err)
	}
	return nil
}

// GetExpense implements storage.Store.
func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	var doc expenseDoc
	err := s.expenses.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: expense %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, errs.Unavailable("get expense", err)
	}
	e, err := doc.model()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteExpense implements storage.Store.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.expenses.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Unavailable("delete expense", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: expense %s", errs.ErrNotFound, id)
	}
	return nil
}

// ListExpensesInvolving implements storage.Store.
func (s *Store) ListExpensesInvolving(ctx context.Context, user string) ([]models.Expense, error) {
	return s.findExpenses(ctx, bson.M{"participants": user})
}

// ListExpensesInvolvingPair implements storage.Store.
func (s *Store) ListExpensesInvolvingPair(ctx context.Context, a, b string) ([]models.Expense, error) {
	return s.findExpenses(ctx, bson.M{"participants": bson.M{"$all": bson.A{a, b}}})
}

func (s *Store) findExpenses(ctx context.Context, filter bson.M) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := s.expenses.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Unavailable("list expenses", err)
	}
	var docs []expenseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode expenses", err)
	}
	out := make([]models.Expense, 0, len(docs))
	for _, d := range docs {
		e, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateGroup implements storage.Store.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	if _, err := s.groups.InsertOne(ctx, newGroupDoc(g)); err != nil {
		return errs.Unavailable("insert group", err)
	}
	return nil
}

// GetGroup implements storage.Store.
func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var doc groupDoc
	err := s.groups.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, errs.Unavailable("get group", err)
	}
	g := doc.model()
	return &g, nil
}

// UpdateGroupMembers implements storage.Store.
func (s *Store) UpdateGroupMembers(ctx context.Context, id string, members, former []models.Member) error {
	phones := make([]string, len(members))
	for i, m := range members {
		phones[i] = m.Phone
	}
	res, err := s.groups.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"members":        toMemberDocs(members),
			"member_ids":     phones,
			"former_members": toMemberDocs(former),
		}},
	)
	if err != nil {
		return errs.Unavailable("update group members", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	return nil
}

// DeleteGroup implements storage.Store. The group document goes first so a
// failure between the two deletes leaves orphaned expenses rather than a group
// whose history vanished.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	res, err := s.groups.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Unavailable("delete group", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, id)
	}
	if _, err := s.groupExpenses.DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
		return errs.Unavailable("delete group expenses", err)
	}
	return nil
}

// ListGroupsOf implements storage.Store.
func (s *Store) ListGroupsOf(ctx context.Context, user string) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.groups.Find(ctx,
		bson.M{"$or": bson.A{bson.M{"member_ids": user}, bson.M{"created_by": user}}},
		opts,
	)
	if err != nil {
		return nil, errs.Unavailable("list groups", err)
	}
	var docs []groupDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode groups", err)
	}
	out := make([]models.Group, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

// AddGroupExpense implements storage.Store.
func (s *Store) AddGroupExpense(ctx context.Context, groupID string, e *models.GroupExpense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	e.GroupID = groupID

	n, err := s.groups.CountDocuments(ctx, bson.M{"_id": groupID})
	if err != nil {
		return errs.Unavailable("check group", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: group %s", errs.ErrNotFound, groupID)
	}

	doc, err := newGroupExpenseDoc(e)
	if err != nil {
		return err
	}
	if _, err := s.groupExpenses.InsertOne(ctx, doc); err != nil {
		return errs.Unavailable("insert group expense", err)
	}
	return nil
}

// ListGroupExpenses implements storage.Store.
func (s *Store) ListGroupExpenses(ctx context.Context, groupID string) ([]models.GroupExpense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := s.groupExpenses.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, errs.Unavailable("list group expenses", err)
	}
	var docs []groupExpenseDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode group expenses", err)
	}
	out := make([]models.GroupExpense, 0, len(docs))
	for _, d := range docs {
		e, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// AddSettlement implements storage.Store.
func (s *Store) AddSettlement(ctx context.Context, st *models.Settlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}
	doc, err := newSettlementDoc(st)
	if err != nil {
		return err
	}
	if _, err := s.settlements.InsertOne(ctx, doc); err != nil {
		return errs.Unavailable("insert settlement", err)
	}
	return nil
}

// ListSettlementsInvolving implements storage.Store.
func (s *Store) ListSettlementsInvolving(ctx context.Context, user string) ([]models.Settlement, error) {
	return s.findSettlements(ctx, bson.M{"$or": bson.A{bson.M{"from": user}, bson.M{"to": user}}})
}

// ListSettlementsBetween implements storage.Store.
func (s *Store) ListSettlementsBetween(ctx context.Context, a, b string) ([]models.Settlement, error) {
	return s.findSettlements(ctx, bson.M{"$or": bson.A{
		bson.M{"from": a, "to": b},
		bson.M{"from": b, "to": a},
	}})
}

// ListSettlementsByGroup implements storage.Store.
func (s *Store) ListSettlementsByGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return s.findSettlements(ctx, bson.M{"group_id": groupID})
}

func (s *Store) findSettlements(ctx context.Context, filter bson.M) ([]models.Settlement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.settlements.Find(ctx, filter, opts)
	if err != nil {
		return nil, errs.Unavailable("list settlements", err)
	}
	var docs []settlementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode settlements", err)
	}
	out := make([]models.Settlement, 0, len(docs))
	for _, d := range docs {
		st, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// AppendActivity implements storage.Store. The sequence number comes from an
// atomically incremented counter document.
func (s *Store) AppendActivity(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixNano()
	}

	seq, err := s.nextSeq(ctx, collActivity)
	if err != nil {
		return err
	}
	entry.Seq = seq

	doc, err := newActivityDoc(entry)
	if err != nil {
		return err
	}
	if _, err := s.activity.InsertOne(ctx, doc); err != nil {
		return errs.Unavailable("insert activity", err)
	}
	return nil
}

func (s *Store) nextSeq(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, errs.Unavailable("increment sequence", err)
	}
	return counter.Value, nil
}

// ListActivityFor implements storage.Store.
func (s *Store) ListActivityFor(ctx context.Context, user string) ([]models.ActivityEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "seq", Value: -1}})
	cur, err := s.activity.Find(ctx, visibleToFilter(user), opts)
	if err != nil {
		return nil, errs.Unavailable("list activity", err)
	}
	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Unavailable("decode activity", err)
	}
	out := make([]models.ActivityEntry, 0, len(docs))
	for _, d := range docs {
		e, err := d.model()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func visibleToFilter(user string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"actor": user},
		bson.M{"target": user},
		bson.M{"participants": user},
	}}
}

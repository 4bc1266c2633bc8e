package datastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dynamicdo/dynamicdo/models"
)

// ReminderRepository persists reminders in a Mongo collection. Document ids
// are ObjectIDs; everything above this layer sees them as hex strings.
type ReminderRepository struct {
	coll *mongo.Collection
}

func NewReminderRepository(db *mongo.Database) *ReminderRepository {
	return &ReminderRepository{coll: db.Collection(remindersCollection)}
}

// reminderDoc is the stored shape. Kept separate from models.Reminder so the
// ObjectID type never leaks out of this package.
type reminderDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Title     string             `bson:"title"`
	Notes     *string            `bson:"notes"`
	URL       *string            `bson:"url"`
	Date      *string            `bson:"date"`
	Time      *string            `bson:"time"`
	Priority  *string            `bson:"priority"`
	List      *string            `bson:"list"`
	Tag       *string            `bson:"tag"`
	Completed bool               `bson:"completed"`
	Rank      *float64           `bson:"rank,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *reminderDoc) toModel() models.Reminder {
	return models.Reminder{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Title:     d.Title,
		Notes:     d.Notes,
		URL:       d.URL,
		Date:      d.Date,
		Time:      d.Time,
		Priority:  d.Priority,
		List:      d.List,
		Tag:       d.Tag,
		Completed: d.Completed,
		Rank:      d.Rank,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ValidID reports whether id parses as an ObjectID hex string.
func (r *ReminderRepository) ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func (r *ReminderRepository) Insert(ctx context.Context, rem *models.Reminder) (string, error) {
	doc := reminderDoc{
		UserID:    rem.UserID,
		Title:     rem.Title,
		Notes:     rem.Notes,
		URL:       rem.URL,
		Date:      rem.Date,
		Time:      rem.Time,
		Priority:  rem.Priority,
		List:      rem.List,
		Tag:       rem.Tag,
		Completed: rem.Completed,
		Rank:      rem.Rank,
		CreatedAt: rem.CreatedAt,
		UpdatedAt: rem.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert reminder: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// FindByID returns (nil, nil) when no reminder with that id belongs to
// owner, leaving the not-found signal to the caller.
func (r *ReminderRepository) FindByID(ctx context.Context, owner, id string) (*models.Reminder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc reminderDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "user_id": owner}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder %s: %w", id, err)
	}

	rem := doc.toModel()
	return &rem, nil
}

func (r *ReminderRepository) FindByOwner(ctx context.Context, owner string) ([]models.Reminder, error) {
	return r.findAll(ctx, bson.M{"user_id": owner})
}

func (r *ReminderRepository) FindUncompleted(ctx context.Context, owner string) ([]models.Reminder, error) {
	return r.findAll(ctx, bson.M{"user_id": owner, "completed": false})
}

func (r *ReminderRepository) findAll(ctx context.Context, filter bson.M) ([]models.Reminder, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reminderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}

	reminders := make([]models.Reminder, 0, len(docs))
	for i := range docs {
		reminders = append(reminders, docs[i].toModel())
	}
	return reminders, nil
}

// FindOwnedIDs resolves which of the given ids exist and belong to owner,
// in a single query. Ids that do not parse are skipped.
func (r *ReminderRepository) FindOwnedIDs(ctx context.Context, owner string, ids []string) ([]string, error) {
	oids := parseObjectIDs(ids)
	if len(oids) == 0 {
		return []string{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": oids}, "user_id": owner}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reminder ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reminder ids: %w", err)
	}

	found := make([]string, 0, len(docs))
	for _, doc := range docs {
		found = append(found, doc.ID.Hex())
	}
	return found, nil
}

// DeleteMany removes the given owner-scoped ids in one bulk operation.
func (r *ReminderRepository) DeleteMany(ctx context.Context, owner string, ids []string) (int64, error) {
	oids := parseObjectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}, "user_id": owner})
	if err != nil {
		return 0, fmt.Errorf("failed to delete reminders: %w", err)
	}
	return res.DeletedCount, nil
}

// SetCompletion flips the completed flag on the given owner-scoped ids in
// one bulk update, refreshing updated_at.
func (r *ReminderRepository) SetCompletion(ctx context.Context, owner string, ids []string, completed bool, now time.Time) (int64, error) {
	oids := parseObjectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}

	filter := bson.M{"_id": bson.M{"$in": oids}, "user_id": owner}
	update := bson.M{"$set": bson.M{"completed": completed, "updated_at": now}}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to update reminders: %w", err)
	}
	return res.ModifiedCount, nil
}

// ApplyPatch sets the given fields on one owner-scoped reminder and returns
// the updated document, or (nil, nil) when no match exists. Nil values in
// fields clear the stored field.
func (r *ReminderRepository) ApplyPatch(ctx context.Context, owner, id string, fields map[string]any, now time.Time) (*models.Reminder, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updated_at": now}
	for key, value := range fields {
		set[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc reminderDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "user_id": owner}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to patch reminder %s: %w", id, err)
	}

	rem := doc.toModel()
	return &rem, nil
}

// SaveRank persists one ranking result, scoped to (id, owner). Returns
// whether a document was matched; a ranked id belonging to someone else
// simply matches nothing.
func (r *ReminderRepository) SaveRank(ctx context.Context, owner, id string, rank float64, priority string, now time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	filter := bson.M{"_id": oid, "user_id": owner}
	update := bson.M{"$set": bson.M{"rank": rank, "priority": priority, "updated_at": now}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to save rank for reminder %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func parseObjectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	return oids
}

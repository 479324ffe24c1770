package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// ControlFilter captures control listing parameters.
type ControlFilter struct {
	Statuses   []domain.WorkStatus
	AssigneeID *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// ControlRepository encapsulates control persistence.
type ControlRepository interface {
	Create(ctx context.Context, control *domain.Control) error
	Update(ctx context.Context, control *domain.Control) error
	GetByID(ctx context.Context, id string) (*domain.Control, error)
	List(ctx context.Context, filter ControlFilter) ([]domain.Control, error)
	Delete(ctx context.Context, id string) error
	SetTicket(ctx context.Context, id, ticketNumber, ticketURL string) error
	ClearAssignee(ctx context.Context, assigneeID primitive.ObjectID) error
}

type controlRepository struct {
	collection *mongo.Collection
}

// NewControlRepository instantiates repository.
func NewControlRepository(db *mongo.Database) ControlRepository {
	return &controlRepository{collection: db.Collection("controls")}
}

func (r *controlRepository) Create(ctx context.Context, control *domain.Control) error {
	now := time.Now().UTC()
	control.CreatedAt = now
	control.UpdatedAt = now
	if control.ID.IsZero() {
		control.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, control)
	return err
}

func (r *controlRepository) Update(ctx context.Context, control *domain.Control) error {
	control.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"dcfId":                   control.DCFID,
		"title":                   control.Title,
		"explanation":             control.Explanation,
		"status":                  control.Status,
		"assigneeId":              control.AssigneeID,
		"estimatedCompletionDate": control.EstimatedCompletionDate,
		"priorityLevel":           control.PriorityLevel,
		"progress":                control.Progress,
		"externalUrl":             control.ExternalURL,
		"ticketNumber":            control.TicketNumber,
		"ticketUrl":               control.TicketURL,
		"updatedAt":               control.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": control.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *controlRepository) GetByID(ctx context.Context, id string) (*domain.Control, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var control domain.Control
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&control); err != nil {
		return nil, err
	}
	return &control, nil
}

func (r *controlRepository) List(ctx context.Context, filter ControlFilter) ([]domain.Control, error) {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.AssigneeID != nil {
		oid, err := primitive.ObjectIDFromHex(*filter.AssigneeID)
		if err != nil {
			return []domain.Control{}, nil
		}
		query["assigneeId"] = oid
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		query["$or"] = searchClause(*filter.SearchTerm)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var controls []domain.Control
	if err := cursor.All(ctx, &controls); err != nil {
		return nil, err
	}
	return controls, nil
}

// searchClause matches the term as a literal, case-insensitive substring of
// title or dcfId. User input is escaped so regex metacharacters cannot break
// the query.
func searchClause(term string) bson.A {
	pattern := regexp.QuoteMeta(term)
	return bson.A{
		bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
		bson.M{"dcfId": bson.M{"$regex": pattern, "$options": "i"}},
	}
}

func (r *controlRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetTicket records the external ticket reference on a control.
func (r *controlRepository) SetTicket(ctx context.Context, id, ticketNumber, ticketURL string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	update := bson.M{"$set": bson.M{
		"ticketNumber": ticketNumber,
		"ticketUrl":    ticketURL,
		"updatedAt":    time.Now().UTC(),
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearAssignee unsets the assignee on all controls owned by a technician.
func (r *controlRepository) ClearAssignee(ctx context.Context, assigneeID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"assigneeId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"assigneeId": assigneeID}, update)
	return err
}

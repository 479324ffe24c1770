package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/compliance-tracker/internal/domain"
)

// TaskFilter captures task listing parameters.
type TaskFilter struct {
	Statuses   []domain.WorkStatus
	AssigneeID *string
	GroupID    *string
	CategoryID *string
	Limit      int
	Offset     int
}

// TaskOrderUpdate pairs a task id with its new dashboard position.
type TaskOrderUpdate struct {
	ID    string
	Order int
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, updates []TaskOrderUpdate) error
	ClearGroup(ctx context.Context, groupID primitive.ObjectID) error
	ClearAssignee(ctx context.Context, assigneeID primitive.ObjectID) error
}

type taskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(db *mongo.Database) TaskRepository {
	return &taskRepository{collection: db.Collection("tasks")}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, task)
	return err
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":                   task.Title,
		"explanation":             task.Explanation,
		"status":                  task.Status,
		"assigneeId":              task.AssigneeID,
		"groupId":                 task.GroupID,
		"categoryId":              task.CategoryID,
		"estimatedCompletionDate": task.EstimatedCompletionDate,
		"order":                   task.Order,
		"priorityLevel":           task.PriorityLevel,
		"tags":                    task.Tags,
		"progress":                task.Progress,
		"externalUrl":             task.ExternalURL,
		"ticketNumber":            task.TicketNumber,
		"ticketUrl":               task.TicketURL,
		"updatedAt":               task.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": task.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var task domain.Task
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.AssigneeID != nil {
		oid, err := primitive.ObjectIDFromHex(*filter.AssigneeID)
		if err != nil {
			return []domain.Task{}, nil
		}
		query["assigneeId"] = oid
	}
	if filter.GroupID != nil {
		oid, err := primitive.ObjectIDFromHex(*filter.GroupID)
		if err != nil {
			return []domain.Task{}, nil
		}
		query["groupId"] = oid
	}
	if filter.CategoryID != nil && *filter.CategoryID != "" {
		query["categoryId"] = *filter.CategoryID
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []domain.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
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

// Reorder applies bulk order updates. Unknown ids are skipped; last write wins.
func (r *taskRepository) Reorder(ctx context.Context, updates []TaskOrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(updates))
	now := time.Now().UTC()
	for _, u := range updates {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": bson.M{"order": u.Order, "updatedAt": now}}))
	}
	if len(models) == 0 {
		return nil
	}
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// ClearGroup unsets groupId on tasks belonging to a deleted group.
func (r *taskRepository) ClearGroup(ctx context.Context, groupID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"groupId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"groupId": groupID}, update)
	return err
}

// ClearAssignee unsets the assignee on all tasks owned by a technician.
func (r *taskRepository) ClearAssignee(ctx context.Context, assigneeID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"assigneeId": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"assigneeId": assigneeID}, update)
	return err
}

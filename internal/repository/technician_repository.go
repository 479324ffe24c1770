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

// TechnicianRepository encapsulates technician persistence.
type TechnicianRepository interface {
	Create(ctx context.Context, technician *domain.Technician) error
	Update(ctx context.Context, technician *domain.Technician) error
	GetByID(ctx context.Context, id string) (*domain.Technician, error)
	List(ctx context.Context) ([]domain.Technician, error)
	Delete(ctx context.Context, id string) error
}

type technicianRepository struct {
	collection *mongo.Collection
}

// NewTechnicianRepository instantiates repository.
func NewTechnicianRepository(db *mongo.Database) TechnicianRepository {
	return &technicianRepository{collection: db.Collection("technicians")}
}

func (r *technicianRepository) Create(ctx context.Context, technician *domain.Technician) error {
	now := time.Now().UTC()
	technician.CreatedAt = now
	technician.UpdatedAt = now
	if technician.ID.IsZero() {
		technician.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, technician)
	return err
}

func (r *technicianRepository) Update(ctx context.Context, technician *domain.Technician) error {
	technician.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":      technician.Name,
		"email":     technician.Email,
		"agentId":   technician.AgentID,
		"updatedAt": technician.UpdatedAt,
	}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": technician.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *technicianRepository) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	var technician domain.Technician
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&technician); err != nil {
		return nil, err
	}
	return &technician, nil
}

func (r *technicianRepository) List(ctx context.Context) ([]domain.Technician, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var technicians []domain.Technician
	if err := cursor.All(ctx, &technicians); err != nil {
		return nil, err
	}
	return technicians, nil
}

func (r *technicianRepository) Delete(ctx context.Context, id string) error {
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

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodreport/internal/domain/user"
	"foodreport/internal/pkg/apperr"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository implements report.UserDirectory.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(UsersCollection)}
}

func (r *UserRepository) Migrate(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user index: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	doc := userDocument{
		ID:        u.ID,
		Name:      u.Name,
		Email:     user.NormalizeEmail(u.Email),
		CreatedAt: time.Now().UTC(),
	}
	if doc.Email == "" {
		return apperr.Validation("email is required")
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("user already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	*u = *doc.toDomain()
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"email": user.NormalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UserIDByEmail(ctx context.Context, email string) (string, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

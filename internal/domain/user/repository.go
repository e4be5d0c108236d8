package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodreport/internal/database"
	"foodreport/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Name      string    `gorm:"column:name;not null"`
	Email     string    `gorm:"column:email;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&userModel{})
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toDomainUser(m userModel) *User {
	return &User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

// Create inserts u, assigning an id when empty.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m := userModel{ID: u.ID, Name: strings.TrimSpace(u.Name), Email: NormalizeEmail(u.Email)}
	if m.Email == "" {
		return apperr.Validation("email is required")
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Conflict("user already exists")
		}
		return fmt.Errorf("create user: %w", err)
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("find user: %w", tx.Error)
	}
	return toDomainUser(m), nil
}

// UserIDByEmail satisfies report.UserDirectory.
func (r *Repository) UserIDByEmail(ctx context.Context, email string) (string, error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

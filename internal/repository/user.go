package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"worklane/internal/cache"
	"worklane/internal/models"
)

// UserRepository defines the data access contract for users and worker profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ReplaceSkills(ctx context.Context, profile *models.WorkerProfile, skills []string) error
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("username or email already taken")
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// cachedUser carries the password hash through the cache explicitly. The
// public JSON shape strips it (`json:"-"`), so caching a bare User would hand
// cache hits back with an empty Password and any subsequent Save would persist
// the blank hash.
type cachedUser struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

// GetByID loads a user with their full worker profile through the cache.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var cu cachedUser
	err := cache.Aside(ctx, cache.UserKey(id), &cu, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("WorkerProfile.Skills").
			Preload("WorkerProfile.Portfolio").
			First(&cu.User, id).Error; err != nil {
			return err
		}
		cu.PasswordHash = cu.User.Password
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	u := cu.User
	u.Password = cu.PasswordHash
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Preload("WorkerProfile.Skills").
		Preload("WorkerProfile.Portfolio").
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("fetching user %q: %w", username, err)
	}
	return &u, nil
}

// GetByLogin resolves either a username or an email to a user. Login accepts
// both interchangeably.
func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).
		Preload("WorkerProfile.Skills").
		Where("username = ? OR email = ?", login, login).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("user")
		}
		return nil, fmt.Errorf("fetching user by login: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("username or email already taken")
		}
		return fmt.Errorf("updating user %d: %w", user.ID, err)
	}
	if user.WorkerProfile != nil {
		if err := r.db.WithContext(ctx).Save(user.WorkerProfile).Error; err != nil {
			return fmt.Errorf("updating worker profile: %w", err)
		}
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// ReplaceSkills swaps a worker profile's skill set, creating missing skill
// rows on the fly.
func (r *userRepository) ReplaceSkills(ctx context.Context, profile *models.WorkerProfile, skills []string) error {
	resolved := make([]models.Skill, 0, len(skills))
	for _, name := range skills {
		var skill models.Skill
		err := r.db.WithContext(ctx).Where(models.Skill{Name: name}).FirstOrCreate(&skill).Error
		if err != nil {
			return fmt.Errorf("resolving skill %q: %w", name, err)
		}
		resolved = append(resolved, skill)
	}
	if err := r.db.WithContext(ctx).Model(profile).Association("Skills").Replace(resolved); err != nil {
		return fmt.Errorf("replacing skills: %w", err)
	}
	profile.Skills = resolved
	cache.InvalidateUser(ctx, profile.UserID)
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Select("id", "username", "name", "profile_photo", "type", "about").
		Where("LOWER(username) LIKE LOWER(?) OR LOWER(name) LIKE LOWER(?)", pattern, pattern).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}

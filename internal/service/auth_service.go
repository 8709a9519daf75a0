// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"worklane/internal/middleware"
	"worklane/internal/models"
	"worklane/internal/observability"
	"worklane/internal/repository"
	"worklane/internal/validation"
)

const (
	// SessionDuration is how long an issued session stays valid.
	SessionDuration = 7 * 24 * time.Hour

	tokenIssuer   = "worklane-api"
	tokenAudience = "worklane-client"
)

type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	secret []byte
	now    func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, jwtSecret string) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		secret: []byte(jwtSecret),
		now:    time.Now,
	}
}

type SignupInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Type     string `json:"type"`

	// worker-only fields
	Profession string   `json:"profession"`
	Skills     []string `json:"skills"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type EditProfileInput struct {
	UserID       uint
	Name         *string  `json:"name"`
	Password     *string  `json:"password"`
	About        *string  `json:"about"`
	ProfilePhoto *string  `json:"profilePhoto"`
	Instagram    *string  `json:"instagram"`
	Twitter      *string  `json:"twitter"`
	Phone        *string  `json:"phone"`
	Profession   *string  `json:"profession"`
	Skills       []string `json:"skills"`
}

// Signup registers a new user, creating a worker profile when the account type
// is WORKER, and returns the user with a fresh session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUserType(in.Type); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if in.Name == "" {
		return nil, "", models.NewValidationError("name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError(fmt.Errorf("hashing password: %w", err))
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Name:     in.Name,
		Type:     in.Type,
	}
	if in.Type == models.UserTypeWorker {
		user.WorkerProfile = &models.WorkerProfile{
			Profession:     in.Profession,
			Rating:         0,
			CompletedTasks: 0,
		}
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	if user.WorkerProfile != nil && len(in.Skills) > 0 {
		if err := s.users.ReplaceSkills(ctx, user.WorkerProfile, in.Skills); err != nil {
			return nil, "", err
		}
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	observability.TokensIssued.WithLabelValues("signup").Inc()
	middleware.Logger.InfoContext(ctx, "user signed up",
		"user_id", user.ID, "type", user.Type)
	return user, token, nil
}

// Login authenticates by username or email. Both unknown-user and bad-password
// come back as a 401 so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if in.Username == "" || in.Password == "" {
		return nil, "", models.NewValidationError("username and password are required")
	}

	user, err := s.users.GetByLogin(ctx, in.Username)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.ErrCodeNotFound {
			return nil, "", models.NewUnauthorizedError("user not found")
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, "", models.NewUnauthorizedError("incorrect password")
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	observability.TokensIssued.WithLabelValues("login").Inc()
	middleware.Logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

// Logout revokes the session by deleting its token row. A missing or already
// revoked token is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Delete(ctx, token)
}

// ValidateSession checks the JWT's signature, expiry, issuer and audience, then
// confirms the token row still exists so revoked sessions stay dead.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("invalid or expired token")
	}

	row, err := s.tokens.Get(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if row.Expired(s.now()) {
		_ = s.tokens.Delete(ctx, tokenString)
		return nil, models.NewUnauthorizedError("session expired")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, models.NewUnauthorizedError("invalid token subject")
	}
	return s.users.GetByID(ctx, uint(userID))
}

// EditProfile applies a partial update. Nil pointers leave fields untouched;
// profession and skills only apply to worker accounts.
func (s *AuthService) EditProfile(ctx context.Context, in EditProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, models.NewValidationError("name cannot be blank")
		}
		user.Name = *in.Name
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(fmt.Errorf("hashing password: %w", err))
		}
		user.Password = string(hash)
	}
	if in.About != nil {
		user.About = *in.About
	}
	if in.ProfilePhoto != nil {
		user.ProfilePhoto = *in.ProfilePhoto
	}
	if in.Instagram != nil {
		user.Instagram = *in.Instagram
	}
	if in.Twitter != nil {
		user.Twitter = *in.Twitter
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}

	if user.IsWorker() && user.WorkerProfile != nil {
		if in.Profession != nil {
			user.WorkerProfile.Profession = *in.Profession
		}
	} else if in.Profession != nil || len(in.Skills) > 0 {
		return nil, models.NewValidationError("profession and skills apply to worker accounts only")
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if user.IsWorker() && user.WorkerProfile != nil && in.Skills != nil {
		if err := s.users.ReplaceSkills(ctx, user.WorkerProfile, in.Skills); err != nil {
			return nil, err
		}
	}
	return s.users.GetByID(ctx, user.ID)
}

// issueSession signs a JWT and persists the matching token row. Pruning of
// expired rows piggybacks on issuance instead of running on a schedule.
func (s *AuthService) issueSession(ctx context.Context, user *models.User) (string, error) {
	now := s.now()
	expiresAt := now.Add(SessionDuration)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("signing token: %w", err))
	}

	if err := s.tokens.Create(ctx, &models.Token{
		Token:     signed,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", err
	}

	if pruned, err := s.tokens.DeleteExpired(ctx, now); err != nil {
		middleware.Logger.WarnContext(ctx, "pruning expired tokens failed", "error", err)
	} else if pruned > 0 {
		middleware.Logger.DebugContext(ctx, "pruned expired tokens", "count", pruned)
	}
	return signed, nil
}

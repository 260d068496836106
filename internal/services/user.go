package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

// ErrInvalidCredentials is returned for a bad email/password pair without
// revealing which half was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

const bcryptCost = 10

// UserInput is the admin payload for creating or updating a user. An empty
// Password on update leaves the stored hash untouched.
type UserInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password,omitempty"`
	Image    string      `json:"image"`
	Role     models.Role `json:"role"`
	IsActive bool        `json:"isActive"`
}

// UserPage is one page of the admin user listing with its aggregate cards.
type UserPage struct {
	Users      []models.User      `json:"users"`
	Pagination storage.Pagination `json:"pagination"`
	Stats      storage.UserTotals `json:"stats"`
}

type UserService struct {
	store storage.Store
}

func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) validate(in UserInput, requirePassword bool) error {
	var fields []models.FieldError
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, models.FieldError{Field: "name", Message: "Name is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, models.FieldError{Field: "email", Message: "Email is required"})
	}
	if requirePassword && in.Password == "" {
		fields = append(fields, models.FieldError{Field: "password", Message: "Password is required"})
	}
	if in.Role != "" && !models.ValidRole(in.Role) {
		fields = append(fields, models.FieldError{Field: "role", Message: "Unknown role"})
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

// GetUsers pages through users with name/email search and a role filter,
// returning the dashboard aggregate stats alongside.
func (s *UserService) GetUsers(ctx context.Context, page, limit int, search string, role models.Role) (*UserPage, error) {
	if role == "all" {
		role = ""
	}
	users, pagination, totals, err := s.store.Users(ctx, storage.UserQuery{
		Page:   page,
		Limit:  limit,
		Search: search,
		Role:   role,
	})
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: pagination, Stats: totals}, nil
}

// CreateUser hashes the password and stores the user; a taken email surfaces
// as storage.ErrDuplicateEmail.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := s.validate(in, true); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	return s.store.CreateUser(ctx, &models.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
		Image:        in.Image,
		Role:         role,
		IsActive:     in.IsActive,
	})
}

// UpdateUser applies the payload; the password is re-hashed only when one was
// supplied, so an empty field never blanks a stored hash.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UserInput) (*models.User, error) {
	if err := s.validate(in, false); err != nil {
		return nil, err
	}
	existing, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Name = in.Name
	updated.Email = strings.ToLower(strings.TrimSpace(in.Email))
	updated.Image = in.Image
	updated.IsActive = in.IsActive
	if in.Role != "" {
		updated.Role = in.Role
	}
	if strings.TrimSpace(in.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = string(hash)
	}
	return s.store.UpdateUser(ctx, id, &updated)
}

// DeleteUser removes the account. Posts keep their author reference; there is
// no cascade.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	return s.store.DeleteUser(ctx, id)
}

// Authenticate verifies the credentials, refuses deactivated accounts and
// stamps lastLogin on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if updated, err := s.store.UpdateUser(ctx, user.ID, user); err == nil {
		return updated, nil
	}
	return user, nil
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
	"github.com/vjbravo123/portfolio-cms/internal/storage/memdb"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(memdb.New())
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc := newUserService(t)

	user, err := svc.CreateUser(context.Background(), UserInput{
		Name:     "Vivek",
		Email:    "Vivek@Example.COM",
		Password: "s3cret",
		IsActive: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "vivek@example.com", user.Email, "email normalized to lowercase")
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, UserInput{Name: "A", Email: "a@example.com", Password: "x", IsActive: true})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, UserInput{Name: "B", Email: "A@EXAMPLE.com", Password: "y", IsActive: true})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
}

func TestCreateUserValidation(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.CreateUser(context.Background(), UserInput{Role: "superuser"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "email", "password", "role"}, fields)
}

func TestUpdateUserKeepsHashWhenPasswordEmpty(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, UserInput{
		Name: "Vivek", Email: "vivek@example.com", Password: "s3cret", IsActive: true,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, created.ID, UserInput{
		Name: "Vivek Joshi", Email: "vivek@example.com", Role: models.RoleAuthor, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Vivek Joshi", updated.Name)
	assert.Equal(t, models.RoleAuthor, updated.Role)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)

	rehashed, err := svc.UpdateUser(ctx, created.ID, UserInput{
		Name: "Vivek Joshi", Email: "vivek@example.com", Password: "new-pass", IsActive: true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, created.PasswordHash, rehashed.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(rehashed.PasswordHash), []byte("new-pass")))
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, UserInput{
		Name: "Vivek", Email: "vivek@example.com", Password: "s3cret", Role: models.RoleAdmin, IsActive: true,
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "vivek@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin, "successful login stamps lastLogin")

	_, err = svc.Authenticate(ctx, "vivek@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email indistinguishable from bad password")
}

func TestAuthenticateRefusesInactive(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, UserInput{
		Name: "Vivek", Email: "vivek@example.com", Password: "s3cret", IsActive: true,
	})
	require.NoError(t, err)

	_, err = svc.UpdateUser(ctx, created.ID, UserInput{
		Name: "Vivek", Email: "vivek@example.com", IsActive: false,
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "vivek@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUsersRoleFilterAndTotals(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	seed := []UserInput{
		{Name: "Admin", Email: "admin@example.com", Password: "x", Role: models.RoleAdmin, IsActive: true},
		{Name: "Author", Email: "author@example.com", Password: "x", Role: models.RoleAuthor, IsActive: true},
		{Name: "Reader", Email: "reader@example.com", Password: "x", Role: models.RoleUser, IsActive: false},
	}
	for _, in := range seed {
		_, err := svc.CreateUser(ctx, in)
		require.NoError(t, err)
	}

	page, err := svc.GetUsers(ctx, 1, 10, "", "all")
	require.NoError(t, err)
	assert.Len(t, page.Users, 3)
	assert.Equal(t, 3, page.Stats.Total)
	assert.Equal(t, 2, page.Stats.Active)
	assert.Equal(t, 1, page.Stats.Admins)
	assert.Equal(t, 1, page.Stats.Authors)

	page, err = svc.GetUsers(ctx, 1, 10, "", models.RoleAuthor)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "Author", page.Users[0].Name)
}

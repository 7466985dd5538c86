package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/correction-backoffice/internal/application/dto"
	"github.com/jhoicas/correction-backoffice/internal/domain"
	"github.com/jhoicas/correction-backoffice/internal/domain/entity"
	"github.com/jhoicas/correction-backoffice/pkg/jwt"
)

type fakeUserRepo struct {
	users map[string]*entity.User
	err   error
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, f.err
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[email], nil
}

func newUser(t *testing.T, email, password, role, status string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: "usr-" + role, Email: email, PasswordHash: string(hash), Role: role, Status: status}
}

func newUseCase(t *testing.T) *AuthUseCase {
	repo := &fakeUserRepo{users: map[string]*entity.User{
		"admin@correction.test":  newUser(t, "admin@correction.test", "s3cret!", entity.RoleAdmin, entity.UserStatusActive),
		"off@correction.test":    newUser(t, "off@correction.test", "s3cret!", entity.RoleAdmin, entity.UserStatusDisabled),
		"author@correction.test": newUser(t, "author@correction.test", "s3cret!", entity.RoleClient, entity.UserStatusActive),
	}}
	return NewAuthUseCase(repo, JWTConfig{Secret: "test-secret", ExpMinutes: 30, Issuer: "test"})
}

func TestLogin_AdminActivo(t *testing.T) {
	out, err := newUseCase(t).Login(context.Background(), dto.LoginRequest{Email: "admin@correction.test", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.User.Role)

	userID, role, err := jwt.Parse("test-secret", out.Token)
	require.NoError(t, err)
	assert.Equal(t, "usr-admin", userID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestLogin_Rechazos(t *testing.T) {
	cases := []struct {
		name string
		in   dto.LoginRequest
		want error
	}{
		{"campos vacíos", dto.LoginRequest{}, domain.ErrInvalidInput},
		{"email desconocido", dto.LoginRequest{Email: "x@y.z", Password: "s3cret!"}, domain.ErrUnauthorized},
		{"password incorrecto", dto.LoginRequest{Email: "admin@correction.test", Password: "nope"}, domain.ErrUnauthorized},
		{"admin desactivado", dto.LoginRequest{Email: "off@correction.test", Password: "s3cret!"}, domain.ErrForbidden},
		{"cliente no admin", dto.LoginRequest{Email: "author@correction.test", Password: "s3cret!"}, domain.ErrForbidden},
	}
	uc := newUseCase(t)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := uc.Login(context.Background(), c.in)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestLogin_ErrorDeRepositorio(t *testing.T) {
	boom := errors.New("db down")
	uc := NewAuthUseCase(&fakeUserRepo{err: boom}, JWTConfig{Secret: "s"})
	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, boom)
}

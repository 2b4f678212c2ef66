package services

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

type userAuthClient interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
}

type userService struct {
	Auth userAuthClient
}

func NewUserService(client userAuthClient) *userService {
	return &userService{
		Auth: client,
	}
}

// Signup creates an email/password account. Provider failures come back as
// AuthError with the provider's message unchanged.
func (s *userService) Signup(ctx context.Context, email, password string) (string, error) {
	log := logger.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", errs.NewValidationError("email and password are required")
	}

	params := (&auth.UserToCreate{}).Email(email).Password(password)
	user, err := s.Auth.CreateUser(ctx, params)
	if err != nil {
		log.Warn("signup rejected by auth provider", "error", err)
		return "", errs.NewAuthError(err.Error())
	}

	log.Info("user signed up", "uid", user.UID)
	return user.UID, nil
}

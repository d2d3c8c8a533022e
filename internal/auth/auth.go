package auth

import (
	"context"
	"errors"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/environment"
	"it-solutions-hub/internal/models"
)

// ErrInvalidCredentials hides whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("username or password false")

type AuthService struct {
	*environment.Env
}

// DoLogin checks the credentials of user and fills in its id and email on success.
func (s *AuthService) DoLogin(ctx context.Context, user *models.User) error {
	var foundUser models.User

	err := s.FindUserLoginCredentials(ctx, user.Username, &foundUser)
	if errors.Is(err, database.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	if err := models.VerifyPassword(foundUser.Password, user.Password); err != nil {
		return ErrInvalidCredentials
	}

	user.ID = foundUser.ID
	user.Email = foundUser.Email
	return nil
}

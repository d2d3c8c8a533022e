// Command cmd sets the password of an admin user:
//
//	go run ./internal/cmd -config config.json -username admin -password secret [-create]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"it-solutions-hub/internal/config"
	"it-solutions-hub/internal/database"
	"it-solutions-hub/internal/logging"
	"it-solutions-hub/internal/models"
	"os"
)

// ErrNoSuchUser is returned when the user does not exist and creation was not requested.
var ErrNoSuchUser = errors.New("user does not exist")

func main() {
	username := flag.String("username", "", "Name of the admin user")
	password := flag.String("password", "", "New password")
	create := flag.Bool("create", false, "Create the user if it does not exist")

	// parses the flags above together with -config
	c := config.InitConfig()
	logger := logging.InitLogging(c)
	defer logger.RecoverPanic("set-password")

	db, err := database.InitDatabase(c, logger)
	if err != nil {
		os.Exit(1)
	}

	repo := &database.GormRepository{DB: db}
	if err := setPassword(context.Background(), repo, *username, *password, *create); err != nil {
		logger.LogErrorf(nil, "setting password of %q failed: %v", *username, err)
		os.Exit(1)
	}
	logger.LogInfof(nil, "password of %q set", *username)
}

// setPassword stores the bcrypt hash of password for username.
// The username is normalized the way the login form normalizes it.
func setPassword(ctx context.Context, repo database.Repository, username, password string, create bool) error {
	normalized := models.User{Username: username}
	normalized.Prepare()
	username = normalized.Username
	if len(username) == 0 {
		return errors.New("required username")
	}

	var user models.User
	err := repo.FindUserLoginCredentials(ctx, username, &user)
	switch {
	case errors.Is(err, database.ErrNotFound) && create:
		user = models.User{Username: username}
	case errors.Is(err, database.ErrNotFound):
		return fmt.Errorf("%s: %w", username, ErrNoSuchUser)
	case err != nil:
		return err
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}
	return repo.SaveUser(ctx, &user)
}

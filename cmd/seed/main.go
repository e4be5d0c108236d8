// Command seed registers the authorized admin in the user directory so
// reports can be stamped with their user id.
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"foodreport/internal/config"
	"foodreport/internal/domain/user"
	"foodreport/internal/pkg/apperr"
	"foodreport/internal/pkg/logger"
	"foodreport/internal/server"
)

func main() {
	name := flag.String("name", "Admin", "display name of the admin user")
	email := flag.String("email", "", "email to register (default AUTHORIZED_EMAIL)")
	flag.Parse()

	log := logger.New("seed", "text", "info")
	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Fatal("load env")
	}
	cfg, err := config.LoadAPI()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if *email == "" {
		*email = cfg.AuthorizedEmail
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := server.OpenStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("open stores")
	}
	defer stores.Close(ctx)

	if err := seedAdmin(ctx, stores.Users, *name, *email); err != nil {
		log.WithError(err).Fatal("seed admin")
	}
	log.WithField("email", *email).Info("admin user ready")
}

// seedAdmin creates the user unless one with that email already exists.
func seedAdmin(ctx context.Context, users server.UserStore, name, email string) error {
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return users.Create(ctx, &user.User{Name: name, Email: email})
}

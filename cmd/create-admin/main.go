// Command create-admin creates an admin account, or promotes the account
// already registered with the given email.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/atjeh-times/news-api/internal/core/ports"
	"github.com/atjeh-times/news-api/internal/core/service"
	mongostore "github.com/atjeh-times/news-api/internal/infrastructure/db/mongo"
	"github.com/atjeh-times/news-api/internal/pkg/config"
	"github.com/atjeh-times/news-api/pkg/logger"
)

var errMissingEmail = errors.New("-email is required")

func main() {
	log := logger.Init(logger.Options{Level: "info", Pretty: true, Service: "create-admin"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := run(ctx, os.Args[1:], os.Stderr, log)
	cancel()

	switch {
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errMissingEmail):
		fmt.Fprintln(os.Stderr, "create-admin:", err)
		os.Exit(2)
	case err != nil:
		log.Error().Err(err).Msg("create-admin failed")
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (ports.RegisterInput, error) {
	var input ports.RegisterInput
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&input.Email, "email", "", "admin email (required)")
	fs.StringVar(&input.Username, "username", "admin", "username for a new account")
	fs.StringVar(&input.FirstName, "first-name", "Admin", "first name for a new account")
	fs.StringVar(&input.LastName, "last-name", "User", "last name for a new account")
	fs.StringVar(&input.Password, "password", os.Getenv("ADMIN_PASSWORD"), "password for a new account (defaults to $ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return input, err
	}
	if input.Email == "" {
		fs.Usage()
		return input, errMissingEmail
	}
	return input, nil
}

// run returns instead of exiting so the mongo client is always disconnected.
func run(ctx context.Context, args []string, stderr io.Writer, log zerolog.Logger) error {
	input, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	mcfg := config.LoadMongo()
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: mcfg.URI, Database: mcfg.Database})
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	users := mongostore.NewUserRepository(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	// Provisioning never issues a token, so no signing secret is needed.
	auth := service.NewAuthService(users, nil, "", 0, log)
	user, created, err := auth.ProvisionAdmin(ctx, input)
	if err != nil {
		return fmt.Errorf("provision admin: %w", err)
	}

	if created {
		log.Info().Str("email", user.Email).Str("username", user.Username).Msg("admin user created")
		return nil
	}
	log.Info().Str("email", user.Email).Msg("existing user promoted to admin")
	return nil
}

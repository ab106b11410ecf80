// Command chatctl runs maintenance tasks against the record store.
//
//	chatctl fix-models [-model gemini-2.0-flash]
//	chatctl add-user -username alice -password secret
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"unifiedchat-backend/internal/auth"
	"unifiedchat-backend/internal/config"
	"unifiedchat-backend/internal/logger"
	"unifiedchat-backend/internal/models"
	"unifiedchat-backend/internal/store"
	"unifiedchat-backend/internal/store/driver"
)

const defaultFixModel = "gemini-2.0-flash"

var errUsage = errors.New("usage: chatctl <fix-models|add-user> [flags]")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	zapLogger, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("FATAL: Failed to create logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	ctx := context.Background()
	st, err := driver.Open(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open store", zap.Error(err))
	}
	err = run(ctx, os.Args[1:], st, os.Stdout)
	_ = st.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(ctx context.Context, args []string, st store.Store, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "fix-models":
		return fixModels(ctx, args[1:], st, out)
	case "add-user":
		return addUser(ctx, args[1:], st, out)
	default:
		return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
	}
}

// fixModels points every chatbot at one model.
func fixModels(ctx context.Context, args []string, st store.Store, out io.Writer) error {
	fs := flag.NewFlagSet("fix-models", flag.ContinueOnError)
	fs.SetOutput(out)
	model := fs.String("model", defaultFixModel, "model to assign to every chatbot")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *model == "" {
		return errors.New("-model must not be empty")
	}

	n, err := st.SetChatbotModel(ctx, *model)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %d chatbot(s) to model %s\n", n, *model)
	return nil
}

// addUser creates or replaces a user with a bcrypt-hashed password.
func addUser(ctx context.Context, args []string, st store.Store, out io.Writer) error {
	fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
	fs.SetOutput(out)
	username := fs.String("username", "", "username to create or replace")
	password := fs.String("password", "", "plain-text password, stored as a bcrypt hash")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("-username is required")
	}

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		return err
	}
	if err := st.UpsertUser(ctx, models.User{Username: *username, HashedPassword: hashed}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved user %s\n", *username)
	return nil
}

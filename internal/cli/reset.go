package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/taskdesk/internal/db"
	"github.com/terraincognita07/taskdesk/internal/security"
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

const temporaryPasswordLength = 12

// Options carries what every admin command needs to reach the store.
type Options struct {
	DBPath     string
	BcryptCost int
	Logger     *zap.Logger
	Out        io.Writer
}

func (options Options) output() io.Writer {
	if options.Out == nil {
		return io.Discard
	}
	return options.Out
}

func openCredentials(ctx context.Context, options Options) (*db.Store, *services.CredentialService, error) {
	store, err := db.Open(ctx, options.DBPath, options.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	credentials := services.NewCredentialService(store.Repositories().Users, services.NewPasswordHasher(options.BcryptCost))
	return store, credentials, nil
}

func RunResetPasswordCommand(ctx context.Context, options Options, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}

	store, credentials, err := openCredentials(ctx, options)
	if err != nil {
		return err
	}
	defer store.Close()

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	user, err := credentials.ResetPassword(ctx, username, temporaryPassword)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fmt.Errorf("user %s not found", username)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	out := options.output()
	fmt.Fprintf(out, "Password reset for %s\n", user.Username)
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}

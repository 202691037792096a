package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/taskdesk/internal/models"
	"github.com/terraincognita07/taskdesk/internal/services"
)

// RunBootstrapAdminCommand creates the Claim Manager account of a fresh
// installation. It refuses when an active Claim Manager already exists.
func RunBootstrapAdminCommand(ctx context.Context, options Options, username string, readPassword PasswordReader) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if readPassword == nil {
		readPassword = TerminalPasswordReader
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirmation, err := readPassword("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirmation {
		return errors.New("passwords do not match")
	}

	store, credentials, err := openCredentials(ctx, options)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := credentials.Register(ctx, services.RegisterInput{
		Username: username,
		Password: password,
		Role:     models.RoleClaimManager,
	})
	if err != nil {
		if errors.Is(err, services.ErrClaimManagerTaken) {
			return errors.New("an active Claim Manager already exists")
		}
		return fmt.Errorf("create administrator: %w", err)
	}

	fmt.Fprintf(options.output(), "Created %s account %s (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}

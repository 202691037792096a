package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/terraincognita07/taskdesk/internal/db"
	"github.com/terraincognita07/taskdesk/internal/models"
	"github.com/terraincognita07/taskdesk/internal/services"
)

func newTestOptions(t *testing.T) (Options, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	return Options{
		DBPath:     filepath.Join(t.TempDir(), "taskdesk-cli.db"),
		BcryptCost: 4,
		Out:        out,
	}, out
}

func staticPasswords(values ...string) PasswordReader {
	return func(string) (string, error) {
		if len(values) == 0 {
			return "", errors.New("no more input")
		}
		value := values[0]
		values = values[1:]
		return value, nil
	}
}

func loadUser(t *testing.T, options Options, username string) models.User {
	t.Helper()

	store, err := db.Open(context.Background(), options.DBPath, nil)
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}
	defer store.Close()

	user, err := store.Repositories().Users.FindByUsername(context.Background(), username)
	if err != nil {
		t.Fatalf("FindByUsername(%q) returned error: %v", username, err)
	}
	return user
}

func TestBootstrapAdminCreatesClaimManager(t *testing.T) {
	t.Parallel()

	options, out := newTestOptions(t)
	ctx := context.Background()

	if err := RunBootstrapAdminCommand(ctx, options, "boss", staticPasswords("Adm1nPass", "Adm1nPass")); err != nil {
		t.Fatalf("RunBootstrapAdminCommand returned error: %v", err)
	}
	if !strings.Contains(out.String(), models.RoleClaimManager) {
		t.Fatalf("expected output to mention the role, got %q", out.String())
	}

	user := loadUser(t, options, "boss")
	if user.Role != models.RoleClaimManager || !user.IsActive {
		t.Fatalf("unexpected bootstrap user: role=%q active=%v", user.Role, user.IsActive)
	}

	err := RunBootstrapAdminCommand(ctx, options, "second", staticPasswords("Adm1nPass", "Adm1nPass"))
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected second bootstrap to be refused, got %v", err)
	}
}

func TestBootstrapAdminRejectsMismatchedPasswords(t *testing.T) {
	t.Parallel()

	options, _ := newTestOptions(t)
	err := RunBootstrapAdminCommand(context.Background(), options, "boss", staticPasswords("Adm1nPass", "different"))
	if err == nil || !strings.Contains(err.Error(), "do not match") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestResetPasswordSetsTemporaryPassword(t *testing.T) {
	t.Parallel()

	options, out := newTestOptions(t)
	ctx := context.Background()
	if err := RunBootstrapAdminCommand(ctx, options, "boss", staticPasswords("Adm1nPass", "Adm1nPass")); err != nil {
		t.Fatalf("RunBootstrapAdminCommand returned error: %v", err)
	}
	out.Reset()

	if err := RunResetPasswordCommand(ctx, options, "  boss "); err != nil {
		t.Fatalf("RunResetPasswordCommand returned error: %v", err)
	}

	var temporary string
	for _, line := range strings.Split(out.String(), "\n") {
		if value, ok := strings.CutPrefix(line, "Temporary password: "); ok {
			temporary = value
		}
	}
	if len(temporary) != temporaryPasswordLength {
		t.Fatalf("expected a %d character temporary password in %q", temporaryPasswordLength, out.String())
	}

	user := loadUser(t, options, "boss")
	if !user.MustChangePassword {
		t.Fatal("expected must_change_password after reset")
	}
	if !services.NewPasswordHasher(4).Matches(user.PasswordHash, temporary) {
		t.Fatal("expected stored hash to match the printed temporary password")
	}
}

func TestResetPasswordUnknownUser(t *testing.T) {
	t.Parallel()

	options, _ := newTestOptions(t)
	err := RunResetPasswordCommand(context.Background(), options, "ghost")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}

	if err := RunResetPasswordCommand(context.Background(), options, " "); err == nil {
		t.Fatal("expected error for blank username")
	}
}

func TestReadLineTrimsLineEnding(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]string{
		"secret\n":   "secret",
		"secret\r\n": "secret",
		"no-newline": "no-newline",
		"":           "",
	} {
		got, err := readLine(strings.NewReader(input))
		if err != nil {
			t.Fatalf("readLine(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("readLine(%q) = %q, want %q", input, got, want)
		}
	}
}

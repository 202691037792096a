package gateway

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/taskdesk/internal/db"
	"github.com/terraincognita07/taskdesk/internal/i18n"
	"github.com/terraincognita07/taskdesk/internal/security"
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

type testBackend struct {
	gateway     *Gateway
	credentials *services.CredentialService
	store       *db.Store
}

func newTestIssuer(t *testing.T) *security.TokenIssuer {
	t.Helper()
	issuer, err := security.NewTokenIssuer([]byte(strings.Repeat("k", security.MinSecretLength)), time.Hour)
	require.NoError(t, err)
	return issuer
}

func newTestMessages(t *testing.T) *i18n.Manager {
	t.Helper()
	messages, err := i18n.NewManager(i18n.LangEN, i18n.Locales)
	require.NoError(t, err)
	return messages
}

func newTestBackend(t *testing.T) testBackend {
	t.Helper()

	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "taskdesk-gateway.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	repos := store.Repositories()
	credentials := services.NewCredentialService(repos.Users, services.NewPasswordHasher(4))
	gateway, err := New(Dependencies{
		Credentials: credentials,
		Tasks:       services.NewTaskService(repos.Tasks, repos.Users),
		Sessions:    newTestIssuer(t),
		Messages:    newTestMessages(t),
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)

	return testBackend{gateway: gateway, credentials: credentials, store: store}
}

func execute(t *testing.T, gateway *Gateway, operation string, token string, args any) Envelope {
	t.Helper()

	var raw json.RawMessage
	if args != nil {
		encoded, err := json.Marshal(args)
		require.NoError(t, err)
		raw = encoded
	}
	return gateway.Execute(context.Background(), Command{
		Operation: operation,
		Token:     token,
		Client:    "test",
		Args:      raw,
	})
}

// decodeData re-reads the envelope payload the way a UI client would.
func decodeData[T any](t *testing.T, envelope Envelope) T {
	t.Helper()
	require.True(t, envelope.Success, "expected success, got %s: %s", envelope.Kind, envelope.Error)

	encoded, err := json.Marshal(envelope.Data)
	require.NoError(t, err)

	var payload T
	require.NoError(t, json.Unmarshal(encoded, &payload))
	return payload
}

func requireFailure(t *testing.T, envelope Envelope, kind ErrorKind, code string) {
	t.Helper()
	require.False(t, envelope.Success)
	require.Nil(t, envelope.Data)
	require.Equal(t, kind, envelope.Kind, envelope.Error)
	require.Equal(t, code, envelope.Code)
	require.NotEmpty(t, envelope.Error)
}

// registerSession registers username and returns its session token and id.
func registerSession(t *testing.T, gateway *Gateway, username string, role string) (string, uint) {
	t.Helper()

	envelope := execute(t, gateway, OpRegister, "", map[string]any{
		"username": username,
		"password": "Passw0rd!",
		"role":     role,
	})
	session := decodeData[SessionPayload](t, envelope)
	require.NotEmpty(t, session.Token)
	return session.Token, session.User.ID
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/taskdesk/internal/db"
	"github.com/terraincognita07/taskdesk/internal/gateway"
	"github.com/terraincognita07/taskdesk/internal/i18n"
	"github.com/terraincognita07/taskdesk/internal/security"
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "taskdesk-api.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	issuer, err := security.NewTokenIssuer([]byte(strings.Repeat("a", security.MinSecretLength)), time.Hour)
	require.NoError(t, err)
	messages, err := i18n.NewManager(i18n.LangEN, i18n.Locales)
	require.NoError(t, err)

	repos := store.Repositories()
	g, err := gateway.New(gateway.Dependencies{
		Credentials: services.NewCredentialService(repos.Users, services.NewPasswordHasher(4)),
		Tasks:       services.NewTaskService(repos.Tasks, repos.Users),
		Sessions:    issuer,
		Messages:    messages,
	})
	require.NoError(t, err)

	return NewApp(NewHandler(g, messages), zap.NewNop())
}

type envelopeResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
	Code    string          `json:"code"`
}

func postCommand(t *testing.T, app *fiber.App, operation string, token string, body string, headers map[string]string) (int, envelopeResponse) {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/api/commands/"+operation, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := app.Test(request, -1)
	require.NoError(t, err)
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	var envelope envelopeResponse
	require.NoError(t, json.Unmarshal(raw, &envelope), string(raw))
	return response.StatusCode, envelope
}

func TestCommandRoundTripOverHTTP(t *testing.T) {
	app := newTestApp(t)

	status, registered := postCommand(t, app, gateway.OpRegister, "", `{"username":"alice","password":"Passw0rd!"}`, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, registered.Success, registered.Error)

	var session gateway.SessionPayload
	require.NoError(t, json.Unmarshal(registered.Data, &session))
	require.NotEmpty(t, session.Token)

	status, added := postCommand(t, app, gateway.OpAddTask, session.Token, `{"title":"t1"}`, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, added.Success, added.Error)

	_, listed := postCommand(t, app, gateway.OpListTasks, session.Token, "", nil)
	var tasks gateway.TasksPayload
	require.NoError(t, json.Unmarshal(listed.Data, &tasks))
	require.Len(t, tasks.Tasks, 1)
	require.Equal(t, session.User.ID, tasks.Tasks[0].UserID)
}

func TestCommandFailuresKeepStatusOK(t *testing.T) {
	app := newTestApp(t)

	status, envelope := postCommand(t, app, gateway.OpListTasks, "", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.False(t, envelope.Success)
	require.Equal(t, string(gateway.KindInvalidCredential), envelope.Kind)
	require.Equal(t, "unauthenticated", envelope.Code)
}

func TestUnknownOperationAndMalformedBody(t *testing.T) {
	app := newTestApp(t)

	status, unknown := postCommand(t, app, "drop-tables", "", "{}", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "unknown_operation", unknown.Code)

	status, malformed := postCommand(t, app, gateway.OpLogin, "", `{"username":`, nil)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.False(t, malformed.Success)
	require.Equal(t, "bad_arguments", malformed.Code)
}

func TestAcceptLanguageSelectsMessages(t *testing.T) {
	app := newTestApp(t)

	_, envelope := postCommand(t, app, gateway.OpRegister, "", `{"username":"al","password":"Passw0rd!"}`, map[string]string{
		"Accept-Language": "tr-TR,tr;q=0.9,en;q=0.5",
	})
	require.Equal(t, "username_length", envelope.Code)
	require.Equal(t, "Kullanıcı adı 3 ile 50 karakter arasında olmalıdır.", envelope.Error)
}

func TestHealthAndOperations(t *testing.T) {
	app := newTestApp(t)

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, response.StatusCode)
	response.Body.Close()

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/operations", nil), -1)
	require.NoError(t, err)
	defer response.Body.Close()

	var payload struct {
		Operations []string `json:"operations"`
	}
	require.NoError(t, json.NewDecoder(response.Body).Decode(&payload))
	require.Contains(t, payload.Operations, gateway.OpDeleteUser)
	require.Contains(t, payload.Operations, gateway.OpListTasks)

	missing, err := app.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, missing.StatusCode)
	missing.Body.Close()
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(bearerToken(c))
	})

	for header, want := range map[string]string{
		"":               "",
		"Bearer abc":     "abc",
		"bearer  xyz ":   "xyz",
		"Basic dXNlcjpw": "",
	} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			request.Header.Set("Authorization", header)
		}
		response, err := app.Test(request, -1)
		require.NoError(t, err)
		body, err := io.ReadAll(response.Body)
		require.NoError(t, err)
		response.Body.Close()
		require.Equal(t, want, string(body), header)
	}
}

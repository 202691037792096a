// Package gateway is the single entry point for presentation-layer commands.
// Every operation returns an Envelope; no error or panic escapes Execute.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/taskdesk/internal/i18n"
	"github.com/terraincognita07/taskdesk/internal/models"
	"github.com/terraincognita07/taskdesk/internal/security"
	"github.com/terraincognita07/taskdesk/internal/services"
	"go.uber.org/zap"
)

type CredentialStore interface {
	Register(ctx context.Context, input services.RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, username string, password string) (models.User, error)
	FindByID(ctx context.Context, userID uint) (models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	SetRole(ctx context.Context, userID uint, role string) (models.User, error)
	SetActive(ctx context.Context, userID uint, isActive bool) (models.User, error)
	Delete(ctx context.Context, userID uint) (bool, error)
	UpdateProfile(ctx context.Context, userID uint, patch services.ProfilePatch) (models.User, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword string, newPassword string) (models.User, error)
}

type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Task, error)
	Create(ctx context.Context, ownerID uint, fields services.TaskFields) (models.Task, error)
	Update(ctx context.Context, ownerID uint, taskID uint, patch services.TaskPatch) (models.Task, error)
	Delete(ctx context.Context, ownerID uint, taskID uint) (bool, error)
}

type SessionIssuer interface {
	Issue(userID uint, role string) (string, time.Time, error)
	Parse(raw string) (security.SessionClaims, error)
}

type Dependencies struct {
	Credentials CredentialStore
	Tasks       TaskStore
	Sessions    SessionIssuer
	Messages    *i18n.Manager
	Logger      *zap.Logger
}

type Gateway struct {
	credentials CredentialStore
	tasks       TaskStore
	sessions    SessionIssuer
	messages    *i18n.Manager
	logger      *zap.Logger
	limiter     *loginLimiter
	now         func() time.Time
	operations  map[string]operation
}

// call is the per-command state handed to an operation handler.
type call struct {
	command  Command
	language string
	caller   *models.User
}

type handlerFunc func(ctx context.Context, c *call) Envelope

type operation struct {
	handle handlerFunc
	public bool

	// allowed while the caller still has to replace a temporary password
	passwordPending bool
}

func New(deps Dependencies) (*Gateway, error) {
	if deps.Credentials == nil || deps.Tasks == nil || deps.Sessions == nil {
		return nil, errors.New("gateway requires credential, task and session dependencies")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gateway := &Gateway{
		credentials: deps.Credentials,
		tasks:       deps.Tasks,
		sessions:    deps.Sessions,
		messages:    deps.Messages,
		logger:      logger.Named("gateway"),
		limiter:     newLoginLimiter(loginFailureLimit, loginFailureWindow),
		now:         time.Now,
	}
	gateway.operations = gateway.operationTable()
	return gateway, nil
}

// handle adapts a typed handler to the operation table.
func handle[T any](fn func(ctx context.Context, c *call) Result[T]) handlerFunc {
	return func(ctx context.Context, c *call) Envelope {
		return fn(ctx, c).Envelope()
	}
}

func (g *Gateway) operationTable() map[string]operation {
	return map[string]operation{
		OpRegister:       {public: true, handle: handle(g.register)},
		OpLogin:          {public: true, handle: handle(g.login)},
		OpListRoles:      {public: true, handle: handle(g.listRoles)},
		OpWhoAmI:         {passwordPending: true, handle: handle(g.whoAmI)},
		OpUpdateProfile:  {handle: handle(g.updateProfile)},
		OpChangePassword: {passwordPending: true, handle: handle(g.changePassword)},
		OpListTasks:      {handle: handle(g.listTasks)},
		OpAddTask:        {handle: handle(g.addTask)},
		OpUpdateTask:     {handle: handle(g.updateTask)},
		OpDeleteTask:     {handle: handle(g.deleteTask)},
		OpListUsers:      {handle: handle(g.listUsers)},
		OpSetRole:        {handle: handle(g.setRole)},
		OpSetStatus:      {handle: handle(g.setStatus)},
		OpDeleteUser:     {handle: handle(g.deleteUser)},
	}
}

// Operations lists every operation name in a stable order.
func (g *Gateway) Operations() []string {
	names := make([]string, 0, len(g.operations))
	for name := range g.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Gateway) HasOperation(name string) bool {
	_, ok := g.operations[name]
	return ok
}

// Execute runs one command to completion.
func (g *Gateway) Execute(ctx context.Context, command Command) (envelope Envelope) {
	started := g.now()
	c := &call{command: command, language: g.language(command.Language)}
	name := strings.TrimSpace(command.Operation)

	defer func() {
		if recovered := recover(); recovered != nil {
			g.logger.Error("operation panicked",
				zap.String("operation", name),
				zap.Any("panic", recovered),
				zap.Stack("stack"),
			)
			envelope = failure[struct{}](g, c, fmt.Errorf("%w: panic: %v", services.ErrStorage, recovered)).Envelope()
		}
		g.logOutcome(name, started, envelope)
	}()

	op, ok := g.operations[name]
	if !ok {
		return failure[struct{}](g, c, services.ErrUnknownOperation).Envelope()
	}

	if !op.public {
		caller, err := g.resolveCaller(ctx, command.Token)
		if err != nil {
			return failure[struct{}](g, c, err).Envelope()
		}
		if caller.MustChangePassword && !op.passwordPending {
			return failure[struct{}](g, c, services.ErrPasswordChangeRequired).Envelope()
		}
		c.caller = &caller
	}

	return op.handle(ctx, c)
}

// resolveCaller reloads the session user from storage on every call so role
// changes, deactivation and deletion take effect immediately.
func (g *Gateway) resolveCaller(ctx context.Context, token string) (models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, services.ErrUnauthenticated
	}
	claims, err := g.sessions.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrSessionTokenExpired) {
			return models.User{}, services.ErrSessionExpired
		}
		return models.User{}, services.ErrUnauthenticated
	}

	user, err := g.credentials.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return models.User{}, services.ErrUnauthenticated
		}
		return models.User{}, err
	}
	if !user.IsActive {
		return models.User{}, services.ErrAccountInactive
	}
	return user, nil
}

func (g *Gateway) language(requested string) string {
	if g.messages == nil {
		return i18n.LangEN
	}
	return g.messages.NormalizeLanguage(requested)
}

func (g *Gateway) logOutcome(name string, started time.Time, envelope Envelope) {
	fields := []zap.Field{
		zap.String("operation", name),
		zap.Duration("duration", g.now().Sub(started)),
		zap.Bool("success", envelope.Success),
	}
	if !envelope.Success {
		fields = append(fields, zap.String("kind", string(envelope.Kind)), zap.String("code", envelope.Code))
	}
	g.logger.Info("command handled", fields...)
}

// Reject builds the failure envelope for a command a transport could not
// decode far enough to execute.
func (g *Gateway) Reject(command Command, err error) Envelope {
	c := &call{command: command, language: g.language(command.Language)}
	envelope := failure[struct{}](g, c, err).Envelope()
	g.logOutcome(command.Operation, g.now(), envelope)
	return envelope
}

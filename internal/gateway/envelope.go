package gateway

import (
	"encoding/json"
	"time"

	"github.com/terraincognita07/taskdesk/internal/models"
)

// Command is one request from the presentation layer.
type Command struct {
	Operation string          `json:"operation"`
	Token     string          `json:"token,omitempty"`
	Language  string          `json:"lang,omitempty"`
	Client    string          `json:"-"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// Envelope is the uniform response: {success: true, data} or
// {success: false, error, kind, code}.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Code    string    `json:"code,omitempty"`
}

type UserPayload struct {
	User models.SafeProfile `json:"user"`
}

type SessionPayload struct {
	User      models.SafeProfile `json:"user"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

type UsersPayload struct {
	Users []models.SafeProfile `json:"users"`
}

type TaskPayload struct {
	Task models.Task `json:"task"`
}

type TasksPayload struct {
	Tasks []models.Task `json:"tasks"`
}

type DeletedPayload struct {
	Deleted bool `json:"deleted"`
}

type RolesPayload struct {
	Roles []string `json:"roles"`
}

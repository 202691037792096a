package bridge

import (
	"encoding/json"
	"errors"

	"github.com/terraincognita07/taskdesk/internal/gateway"
)

const (
	SubjectPrefix   = "taskdesk.cmd."
	QueueGroup      = "taskdesk-backend"
	RequestIDHeader = "Taskdesk-Request-Id"
)

// Subject returns the request subject of a gateway operation.
func Subject(operation string) string {
	return SubjectPrefix + operation
}

// Request is the message body a UI publishes for one command.
type Request struct {
	Token    string          `json:"token,omitempty"`
	Language string          `json:"lang,omitempty"`
	Args     json.RawMessage `json:"args,omitempty"`
}

// Reply is an envelope as received by a client; Data stays raw until the
// caller decodes it into the payload type it expects.
type Reply struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Kind    gateway.ErrorKind `json:"kind,omitempty"`
	Code    string            `json:"code,omitempty"`
}

var errFailedReply = errors.New("reply is not successful")

func (reply Reply) Decode(target any) error {
	if !reply.Success {
		return errFailedReply
	}
	return json.Unmarshal(reply.Data, target)
}

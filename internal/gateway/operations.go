package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/terraincognita07/taskdesk/internal/services"
)

const (
	OpRegister       = "register"
	OpLogin          = "login"
	OpListRoles      = "list-roles"
	OpWhoAmI         = "whoami"
	OpUpdateProfile  = "update-profile"
	OpChangePassword = "change-password"
	OpListTasks      = "list-tasks"
	OpAddTask        = "add-task"
	OpUpdateTask     = "update-task"
	OpDeleteTask     = "delete-task"
	OpListUsers      = "list-users"
	OpSetRole        = "set-role"
	OpSetStatus      = "set-status"
	OpDeleteUser     = "delete-user"
)

// decodeArgs fills target from the command arguments. Missing arguments
// decode as an empty object.
func decodeArgs(raw json.RawMessage, target any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return services.ErrMalformedArguments
	}
	return nil
}

// optionalString distinguishes an absent JSON field from null and from a value.
type optionalString struct {
	set   bool
	null  bool
	value string
}

func (field *optionalString) UnmarshalJSON(data []byte) error {
	field.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		field.null = true
		return nil
	}
	return json.Unmarshal(data, &field.value)
}

func (field optionalString) pointer() *string {
	if !field.set || field.null {
		return nil
	}
	value := field.value
	return &value
}

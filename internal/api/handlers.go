package api

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/taskdesk/internal/gateway"
	"github.com/terraincognita07/taskdesk/internal/i18n"
	"github.com/terraincognita07/taskdesk/internal/services"
)

type Executor interface {
	Execute(ctx context.Context, command gateway.Command) gateway.Envelope
	Reject(command gateway.Command, err error) gateway.Envelope
	Operations() []string
	HasOperation(name string) bool
}

type Handler struct {
	executor Executor
	messages *i18n.Manager
}

func NewHandler(executor Executor, messages *i18n.Manager) *Handler {
	return &Handler{executor: executor, messages: messages}
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) ListOperations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"operations": handler.executor.Operations()})
}

// RunCommand executes one gateway operation. Envelopes are returned with
// status 200 whether or not the operation succeeded.
func (handler *Handler) RunCommand(c *fiber.Ctx) error {
	command := gateway.Command{
		Operation: strings.TrimSpace(c.Params("operation")),
		Token:     bearerToken(c),
		Language:  handler.requestLanguage(c),
		Client:    requestClientKey(c),
	}

	if !handler.executor.HasOperation(command.Operation) {
		return c.Status(fiber.StatusNotFound).JSON(handler.executor.Reject(command, services.ErrUnknownOperation))
	}

	body := c.Body()
	if len(body) > 0 && !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(handler.executor.Reject(command, services.ErrMalformedArguments))
	}
	// fiber reuses the request buffer once the handler returns
	command.Args = append(json.RawMessage(nil), body...)

	return c.JSON(handler.executor.Execute(c.UserContext(), command))
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return apiError(c, fiber.StatusNotFound, "not found")
}

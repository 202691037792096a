package gateway

import (
	"context"

	"github.com/terraincognita07/taskdesk/internal/services"
)

type listTasksArgs struct {
	OwnerID uint `json:"ownerId"`
}

type addTaskArgs struct {
	OwnerID     uint   `json:"ownerId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

type updateTaskArgs struct {
	TaskID      uint           `json:"taskId"`
	Title       optionalString `json:"title"`
	Description optionalString `json:"description"`
	Status      optionalString `json:"status"`
	Priority    optionalString `json:"priority"`
	DueDate     optionalString `json:"dueDate"`
}

type deleteTaskArgs struct {
	TaskID uint `json:"taskId"`
}

// ownerFor resolves the task owner of a command. An explicit ownerId must
// name the caller.
func ownerFor(c *call, requested uint) (uint, error) {
	if requested != 0 && requested != c.caller.ID {
		return 0, services.ErrOwnerMismatch
	}
	return c.caller.ID, nil
}

func (g *Gateway) listTasks(ctx context.Context, c *call) Result[TasksPayload] {
	var args listTasksArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[TasksPayload](g, c, err)
	}
	ownerID, err := ownerFor(c, args.OwnerID)
	if err != nil {
		return failure[TasksPayload](g, c, err)
	}

	tasks, err := g.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return failure[TasksPayload](g, c, err)
	}
	return Ok(TasksPayload{Tasks: tasks})
}

func (g *Gateway) addTask(ctx context.Context, c *call) Result[TaskPayload] {
	var args addTaskArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[TaskPayload](g, c, err)
	}
	ownerID, err := ownerFor(c, args.OwnerID)
	if err != nil {
		return failure[TaskPayload](g, c, err)
	}

	task, err := g.tasks.Create(ctx, ownerID, services.TaskFields{
		Title:       args.Title,
		Description: args.Description,
		Status:      args.Status,
		Priority:    args.Priority,
		DueDate:     args.DueDate,
	})
	if err != nil {
		return failure[TaskPayload](g, c, err)
	}
	return Ok(TaskPayload{Task: task})
}

func (g *Gateway) updateTask(ctx context.Context, c *call) Result[TaskPayload] {
	var args updateTaskArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[TaskPayload](g, c, err)
	}
	if args.TaskID == 0 {
		return failure[TaskPayload](g, c, services.ErrMalformedArguments)
	}

	patch := services.TaskPatch{
		Title:        args.Title.pointer(),
		Description:  args.Description.pointer(),
		Status:       args.Status.pointer(),
		Priority:     args.Priority.pointer(),
		DueDate:      args.DueDate.pointer(),
		ClearDueDate: args.DueDate.null,
	}
	task, err := g.tasks.Update(ctx, c.caller.ID, args.TaskID, patch)
	if err != nil {
		return failure[TaskPayload](g, c, err)
	}
	return Ok(TaskPayload{Task: task})
}

func (g *Gateway) deleteTask(ctx context.Context, c *call) Result[DeletedPayload] {
	var args deleteTaskArgs
	if err := decodeArgs(c.command.Args, &args); err != nil {
		return failure[DeletedPayload](g, c, err)
	}
	if args.TaskID == 0 {
		return failure[DeletedPayload](g, c, services.ErrMalformedArguments)
	}

	deleted, err := g.tasks.Delete(ctx, c.caller.ID, args.TaskID)
	if err != nil {
		return failure[DeletedPayload](g, c, err)
	}
	return Ok(DeletedPayload{Deleted: deleted})
}

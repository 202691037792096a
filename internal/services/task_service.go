package services

import (
	"context"
	"errors"
	"time"

	"github.com/terraincognita07/taskdesk/internal/models"
	"gorm.io/gorm"
)

type TaskRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Task, error)
	FindByID(ctx context.Context, taskID uint) (models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	UpdateFields(ctx context.Context, taskID uint, updates map[string]any) (models.Task, error)
	Delete(ctx context.Context, taskID uint) (bool, error)
}

type TaskOwnerLookup interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
}

type TaskFields struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
}

// TaskPatch carries only the fields the caller supplied. ClearDueDate
// removes an existing due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *string
	ClearDueDate bool
}

type TaskService struct {
	tasks  TaskRepository
	owners TaskOwnerLookup
	now    func() time.Time
}

func NewTaskService(tasks TaskRepository, owners TaskOwnerLookup) *TaskService {
	return &TaskService{
		tasks:  tasks,
		owners: owners,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (service *TaskService) ListByOwner(ctx context.Context, ownerID uint) ([]models.Task, error) {
	tasks, err := service.tasks.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, storageFailure("list tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (service *TaskService) Create(ctx context.Context, ownerID uint, fields TaskFields) (models.Task, error) {
	task, err := buildTask(fields)
	if err != nil {
		return models.Task{}, err
	}

	if _, err := service.owners.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrUserNotFound
		}
		return models.Task{}, storageFailure("find task owner", err)
	}

	now := service.now()
	task.UserID = ownerID
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := service.tasks.Create(ctx, &task); err != nil {
		return models.Task{}, storageFailure("create task", err)
	}
	return task, nil
}

func buildTask(fields TaskFields) (models.Task, error) {
	title, err := NormalizeTaskTitle(fields.Title)
	if err != nil {
		return models.Task{}, err
	}
	description, err := NormalizeTaskDescription(fields.Description)
	if err != nil {
		return models.Task{}, err
	}
	status, err := NormalizeTaskStatus(fields.Status)
	if err != nil {
		return models.Task{}, err
	}
	priority, err := NormalizeTaskPriority(fields.Priority)
	if err != nil {
		return models.Task{}, err
	}
	dueDate, err := ParseDueDate(fields.DueDate)
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
	}, nil
}

func (service *TaskService) Update(ctx context.Context, ownerID uint, taskID uint, patch TaskPatch) (models.Task, error) {
	updates, err := taskPatchUpdates(patch)
	if err != nil {
		return models.Task{}, err
	}

	task, err := service.ownedTask(ctx, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	if len(updates) == 0 {
		return task, nil
	}

	updates["updated_at"] = service.now()
	updated, err := service.tasks.UpdateFields(ctx, taskID, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, storageFailure("update task", err)
	}
	return updated, nil
}

func taskPatchUpdates(patch TaskPatch) (map[string]any, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		title, err := NormalizeTaskTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		description, err := NormalizeTaskDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		updates["description"] = description
	}
	if patch.Status != nil {
		status, err := NormalizeTaskStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}
	if patch.Priority != nil {
		priority, err := NormalizeTaskPriority(*patch.Priority)
		if err != nil {
			return nil, err
		}
		updates["priority"] = priority
	}
	switch {
	case patch.ClearDueDate:
		updates["due_date"] = nil
	case patch.DueDate != nil:
		dueDate, err := ParseDueDate(*patch.DueDate)
		if err != nil {
			return nil, err
		}
		if dueDate == nil {
			updates["due_date"] = nil
		} else {
			updates["due_date"] = *dueDate
		}
	}
	return updates, nil
}

func (service *TaskService) Delete(ctx context.Context, ownerID uint, taskID uint) (bool, error) {
	if _, err := service.ownedTask(ctx, ownerID, taskID); err != nil {
		return false, err
	}

	deleted, err := service.tasks.Delete(ctx, taskID)
	if err != nil {
		return false, storageFailure("delete task", err)
	}
	if !deleted {
		return false, ErrTaskNotFound
	}
	return true, nil
}

func (service *TaskService) ownedTask(ctx context.Context, ownerID uint, taskID uint) (models.Task, error) {
	task, err := service.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, storageFailure("find task", err)
	}
	if err := AuthorizeTaskAccess(ownerID, task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/terraincognita07/taskdesk/internal/models"
)

const dueDateLayout = "2006-01-02"

func NormalizeTaskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrTaskTitleRequired
	}
	if utf8.RuneCountInString(title) > models.MaxTaskTitleLength {
		return "", ErrTaskTitleTooLong
	}
	return title, nil
}

func NormalizeTaskDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if utf8.RuneCountInString(description) > models.MaxTaskDescriptionLength {
		return "", ErrTaskDescriptionLong
	}
	return description, nil
}

func NormalizeTaskStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		return models.TaskStatusTodo, nil
	}
	if !models.IsKnownTaskStatus(status) {
		return "", ErrTaskStatusInvalid
	}
	return status, nil
}

func NormalizeTaskPriority(raw string) (string, error) {
	priority := strings.ToLower(strings.TrimSpace(raw))
	if priority == "" {
		return models.TaskPriorityMedium, nil
	}
	if !models.IsKnownTaskPriority(priority) {
		return "", ErrTaskPriorityInvalid
	}
	return priority, nil
}

// ParseDueDate accepts a calendar day or a full RFC 3339 timestamp.
// An empty value means no due date.
func ParseDueDate(raw string) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if day, err := time.Parse(dueDateLayout, value); err == nil {
		return &day, nil
	}
	moment, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, ErrTaskDueDateInvalid
	}
	moment = moment.UTC()
	return &moment, nil
}

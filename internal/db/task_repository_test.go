package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/taskdesk/internal/models"
	"gorm.io/gorm"
)

func createTestTask(t *testing.T, repos *Repositories, ownerID uint, title string, createdAt time.Time) models.Task {
	t.Helper()

	task := models.Task{
		UserID:    ownerID,
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		CreatedAt: createdAt,
	}
	if err := repos.Tasks.Create(context.Background(), &task); err != nil {
		t.Fatalf("create task %s: %v", title, err)
	}
	return task
}

func TestTaskRepositoryListByUserNewestFirst(t *testing.T) {
	repos := newTestRepositories(t)
	owner := createTestUser(t, repos, "owner", models.RoleSiteResponsible)
	other := createTestUser(t, repos, "other", models.RoleSiteResponsible)

	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	createTestTask(t, repos, owner.ID, "oldest", base)
	createTestTask(t, repos, owner.ID, "newest", base.Add(2*time.Hour))
	createTestTask(t, repos, owner.ID, "middle", base.Add(time.Hour))
	createTestTask(t, repos, other.ID, "foreign", base.Add(3*time.Hour))

	tasks, err := repos.Tasks.ListByUser(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	got := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if task.UserID != owner.ID {
			t.Fatalf("expected only owner tasks, got task of user %d", task.UserID)
		}
		got = append(got, task.Title)
	}
	want := []string{"newest", "middle", "oldest"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestTaskRepositoryRejectsUnknownOwner(t *testing.T) {
	repos := newTestRepositories(t)

	task := models.Task{UserID: 404, Title: "orphan", CreatedAt: time.Now().UTC()}
	if err := repos.Tasks.Create(context.Background(), &task); err == nil {
		t.Fatal("expected foreign key violation for unknown owner")
	}
}

func TestTaskRepositoryUpdateFieldsPartial(t *testing.T) {
	repos := newTestRepositories(t)
	owner := createTestUser(t, repos, "owner", models.RoleSiteResponsible)
	task := createTestTask(t, repos, owner.ID, "draft", time.Now().UTC())

	updated, err := repos.Tasks.UpdateFields(context.Background(), task.ID, map[string]any{"status": models.TaskStatusDone})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Status != models.TaskStatusDone {
		t.Fatalf("expected status done, got %q", updated.Status)
	}
	if updated.Title != "draft" {
		t.Fatalf("expected title to stay draft, got %q", updated.Title)
	}

	_, err = repos.Tasks.UpdateFields(context.Background(), 9999, map[string]any{"status": models.TaskStatusDone})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound for missing task, got %v", err)
	}
}

func TestTaskRepositoryDelete(t *testing.T) {
	repos := newTestRepositories(t)
	owner := createTestUser(t, repos, "owner", models.RoleSiteResponsible)
	task := createTestTask(t, repos, owner.ID, "temp", time.Now().UTC())

	deleted, err := repos.Tasks.Delete(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if !deleted {
		t.Fatal("expected task to be deleted")
	}

	deleted, err = repos.Tasks.Delete(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("delete missing task: %v", err)
	}
	if deleted {
		t.Fatal("expected missing task delete to report false")
	}
}

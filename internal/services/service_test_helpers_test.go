package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/terraincognita07/taskdesk/internal/db"
	"github.com/terraincognita07/taskdesk/internal/models"
	"go.uber.org/zap"
)

type testServices struct {
	store       *db.Store
	credentials *CredentialService
	tasks       *TaskService
}

func newTestServices(t *testing.T) testServices {
	t.Helper()

	store, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "taskdesk-services.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	repos := store.Repositories()
	return testServices{
		store:       store,
		credentials: NewCredentialService(repos.Users, NewPasswordHasher(4)),
		tasks:       NewTaskService(repos.Tasks, repos.Users),
	}
}

func mustRegister(t *testing.T, services testServices, username string, role string) models.User {
	t.Helper()

	user, err := services.credentials.Register(context.Background(), RegisterInput{
		Username: username,
		Password: "secret1",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/taskdesk/internal/models"
)

func TestCanAdministerOnlyClaimManager(t *testing.T) {
	for _, role := range models.Roles() {
		want := role == models.RoleClaimManager
		if got := CanAdminister(role); got != want {
			t.Fatalf("CanAdminister(%q) = %v, want %v", role, got, want)
		}
	}
	if CanAdminister("") {
		t.Fatal("expected empty role to be denied")
	}
}

func TestAuthorizeAdministration(t *testing.T) {
	testCases := []struct {
		name   string
		caller *models.User
		want   error
	}{
		{name: "no caller", caller: nil, want: ErrAdministrationDenied},
		{name: "non admin", caller: &models.User{ID: 2, Role: models.RoleSiteResponsible, IsActive: true}, want: ErrAdministrationDenied},
		{name: "inactive admin", caller: &models.User{ID: 1, Role: models.RoleClaimManager}, want: ErrAccountInactive},
		{name: "active admin", caller: &models.User{ID: 1, Role: models.RoleClaimManager, IsActive: true}, want: nil},
	}

	for _, testCase := range testCases {
		err := AuthorizeAdministration(testCase.caller)
		if !errors.Is(err, testCase.want) && !(err == nil && testCase.want == nil) {
			t.Fatalf("%s: expected %v, got %v", testCase.name, testCase.want, err)
		}
	}
}

func TestAuthorizeTargetChangeRejectsSelf(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleClaimManager, IsActive: true}

	if err := AuthorizeTargetChange(admin, 1); !errors.Is(err, ErrSelfChangeDenied) {
		t.Fatalf("expected ErrSelfChangeDenied, got %v", err)
	}
	if err := AuthorizeTargetChange(admin, 2); err != nil {
		t.Fatalf("expected change of another user to be allowed, got %v", err)
	}
	if KindOf(ErrSelfChangeDenied) != KindForbidden {
		t.Fatalf("expected forbidden kind, got %s", KindOf(ErrSelfChangeDenied))
	}
}

package services

import "github.com/terraincognita07/taskdesk/internal/models"

// CanAdminister reports whether a role may manage other users.
func CanAdminister(role string) bool {
	return role == models.AdministratorRole
}

// AuthorizeAdministration gates list-users, set-role, set-status and delete-user.
func AuthorizeAdministration(caller *models.User) error {
	if caller == nil {
		return ErrAdministrationDenied
	}
	if !caller.IsActive {
		return ErrAccountInactive
	}
	if !CanAdminister(caller.Role) {
		return ErrAdministrationDenied
	}
	return nil
}

// AuthorizeTargetChange additionally forbids administrators from changing
// their own role or status, or deleting their own account.
func AuthorizeTargetChange(caller *models.User, targetUserID uint) error {
	if err := AuthorizeAdministration(caller); err != nil {
		return err
	}
	if caller.ID == targetUserID {
		return ErrSelfChangeDenied
	}
	return nil
}

// AuthorizeTaskAccess checks that the caller owns the task it is touching.
func AuthorizeTaskAccess(callerID uint, task models.Task) error {
	if task.UserID != callerID {
		return ErrTaskOwnershipViolation
	}
	return nil
}

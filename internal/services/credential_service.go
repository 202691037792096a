package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/taskdesk/internal/models"
	"gorm.io/gorm"
)

type CredentialRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountActiveByRole(ctx context.Context, role string, excludeUserID uint) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByID(ctx context.Context, userID uint) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateByID(ctx context.Context, userID uint, updates map[string]any) error
	UpdateExclusiveRole(ctx context.Context, userID uint, updates map[string]any, exclusiveRole string) (bool, error)
	DeleteAccountAndTasks(ctx context.Context, userID uint) (bool, error)
}

type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Role     string
}

type ProfilePatch struct {
	FullName *string
	Email    *string
}

type CredentialService struct {
	users  CredentialRepository
	hasher *PasswordHasher
	now    func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

func NewCredentialService(users CredentialRepository, hasher *PasswordHasher) *CredentialService {
	if hasher == nil {
		hasher = NewPasswordHasher(DefaultBcryptCost)
	}
	return &CredentialService{
		users:  users,
		hasher: hasher,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// userWrite is one pass through the credential pipeline:
// validate (by the caller), hash the secret if present, persist.
type userWrite struct {
	userID  uint
	record  *models.User
	updates map[string]any
	secret  string
}

func (service *CredentialService) write(ctx context.Context, change *userWrite) error {
	if err := service.hashSecret(change); err != nil {
		return err
	}
	return service.persist(ctx, change)
}

func (service *CredentialService) hashSecret(change *userWrite) error {
	if change.secret == "" {
		return nil
	}
	hash, err := service.hasher.Hash(change.secret)
	change.secret = ""
	if err != nil {
		return storageFailure("hash password", err)
	}
	if change.record != nil {
		change.record.PasswordHash = hash
		return nil
	}
	if change.updates == nil {
		change.updates = map[string]any{}
	}
	change.updates["password_hash"] = hash
	return nil
}

func (service *CredentialService) persist(ctx context.Context, change *userWrite) error {
	if change.record != nil {
		if err := service.users.Create(ctx, change.record); err != nil {
			return service.classifyCreateError(ctx, change.record, err)
		}
		return nil
	}
	if err := service.users.UpdateByID(ctx, change.userID, change.updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageFailure("update user", err)
	}
	return nil
}

func (service *CredentialService) classifyCreateError(ctx context.Context, user *models.User, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return storageFailure("create user", err)
	}
	exists, lookupErr := service.users.ExistsByUsername(ctx, user.Username)
	if lookupErr == nil && !exists && user.Role == models.AdministratorRole {
		return ErrClaimManagerTaken
	}
	return ErrUsernameTaken
}

func (service *CredentialService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	username, err := NormalizeUsername(input.Username)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return models.User{}, err
	}
	fullName, err := NormalizeFullName(input.FullName)
	if err != nil {
		return models.User{}, err
	}
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return models.User{}, err
	}
	requestedRole := strings.TrimSpace(input.Role)
	role, err := service.resolveRegistrationRole(ctx, requestedRole)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByUsername(ctx, username)
	if err != nil {
		return models.User{}, storageFailure("check username", err)
	}
	if exists {
		return models.User{}, ErrUsernameTaken
	}

	now := service.now()
	user := models.User{
		Username:  username,
		FullName:  fullName,
		Email:     email,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	change := &userWrite{record: &user, secret: input.Password}
	err = service.write(ctx, change)
	if errors.Is(err, ErrClaimManagerTaken) && requestedRole == "" {
		// another first registration won the bootstrap role
		user.Role = models.DefaultRole
		err = service.write(ctx, change)
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// resolveRegistrationRole gives the very first account the administrator
// role so a fresh installation can be managed at all.
func (service *CredentialService) resolveRegistrationRole(ctx context.Context, requested string) (string, error) {
	if requested == "" {
		count, err := service.users.CountUsers(ctx)
		if err != nil {
			return "", storageFailure("count users", err)
		}
		if count == 0 {
			return models.AdministratorRole, nil
		}
		return models.DefaultRole, nil
	}

	if err := ValidateRole(requested); err != nil {
		return "", err
	}
	if requested == models.AdministratorRole {
		holders, err := service.users.CountActiveByRole(ctx, models.AdministratorRole, 0)
		if err != nil {
			return "", storageFailure("count administrators", err)
		}
		if holders > 0 {
			return "", ErrClaimManagerTaken
		}
	}
	return requested, nil
}

func (service *CredentialService) Authenticate(ctx context.Context, username string, password string) (models.User, error) {
	user, err := service.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			service.hasher.Matches(service.decoy(), password)
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, storageFailure("find user", err)
	}

	if !service.hasher.Matches(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return models.User{}, ErrAccountInactive
	}
	return user, nil
}

// decoy returns a throwaway hash so lookups of unknown usernames spend the
// same bcrypt time as real ones.
func (service *CredentialService) decoy() string {
	service.decoyOnce.Do(func() {
		hash, err := service.hasher.Hash("taskdesk-decoy-password")
		if err == nil {
			service.decoyHash = hash
		}
	})
	return service.decoyHash
}

func (service *CredentialService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, storageFailure("find user", err)
	}
	return user, nil
}

func (service *CredentialService) ListAll(ctx context.Context) ([]models.User, error) {
	users, err := service.users.List(ctx)
	if err != nil {
		return nil, storageFailure("list users", err)
	}
	return users, nil
}

func (service *CredentialService) SetRole(ctx context.Context, userID uint, role string) (models.User, error) {
	role = strings.TrimSpace(role)
	if err := ValidateRole(role); err != nil {
		return models.User{}, err
	}
	return service.updateAccess(ctx, userID, map[string]any{"role": role})
}

func (service *CredentialService) SetActive(ctx context.Context, userID uint, isActive bool) (models.User, error) {
	return service.updateAccess(ctx, userID, map[string]any{"is_active": isActive})
}

func (service *CredentialService) updateAccess(ctx context.Context, userID uint, updates map[string]any) (models.User, error) {
	if _, err := service.FindByID(ctx, userID); err != nil {
		return models.User{}, err
	}

	conflict, err := service.users.UpdateExclusiveRole(ctx, userID, updates, models.AdministratorRole)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, storageFailure("update user access", err)
	}
	if conflict {
		return models.User{}, ErrClaimManagerTaken
	}
	return service.FindByID(ctx, userID)
}

// Delete removes the account together with all of its tasks.
func (service *CredentialService) Delete(ctx context.Context, userID uint) (bool, error) {
	deleted, err := service.users.DeleteAccountAndTasks(ctx, userID)
	if err != nil {
		return false, storageFailure("delete user", err)
	}
	if !deleted {
		return false, ErrUserNotFound
	}
	return true, nil
}

func (service *CredentialService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (models.User, error) {
	updates := map[string]any{}
	if patch.FullName != nil {
		fullName, err := NormalizeFullName(*patch.FullName)
		if err != nil {
			return models.User{}, err
		}
		updates["full_name"] = fullName
	}
	if patch.Email != nil {
		email, err := NormalizeEmail(*patch.Email)
		if err != nil {
			return models.User{}, err
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return service.FindByID(ctx, userID)
	}

	if err := service.write(ctx, &userWrite{userID: userID, updates: updates}); err != nil {
		return models.User{}, err
	}
	return service.FindByID(ctx, userID)
}

func (service *CredentialService) ChangePassword(ctx context.Context, userID uint, currentPassword string, newPassword string) (models.User, error) {
	user, err := service.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if !service.hasher.Matches(user.PasswordHash, currentPassword) {
		return models.User{}, ErrInvalidCredentials
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return models.User{}, err
	}
	if currentPassword == newPassword {
		return models.User{}, ErrPasswordUnchanged
	}

	change := &userWrite{
		userID:  userID,
		updates: map[string]any{"must_change_password": false},
		secret:  newPassword,
	}
	if err := service.write(ctx, change); err != nil {
		return models.User{}, err
	}
	return service.FindByID(ctx, userID)
}

// ResetPassword replaces the secret with an administrator-issued temporary
// password that must be changed after the next login.
func (service *CredentialService) ResetPassword(ctx context.Context, username string, temporaryPassword string) (models.User, error) {
	if err := ValidatePasswordStrength(temporaryPassword); err != nil {
		return models.User{}, err
	}
	user, err := service.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, storageFailure("find user", err)
	}

	change := &userWrite{
		userID:  user.ID,
		updates: map[string]any{"must_change_password": true},
		secret:  temporaryPassword,
	}
	if err := service.write(ctx, change); err != nil {
		return models.User{}, err
	}
	return service.FindByID(ctx, user.ID)
}

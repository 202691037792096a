package db

import (
	"context"
	"errors"

	"github.com/terraincognita07/taskdesk/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) CountActiveByRole(ctx context.Context, role string, excludeUserID uint) (int64, error) {
	return countActiveByRole(repo.database.WithContext(ctx), role, excludeUserID)
}

func countActiveByRole(database *gorm.DB, role string, excludeUserID uint) (int64, error) {
	var count int64
	query := database.Model(&models.User{}).Where("role = ? AND is_active = ?", role, true)
	if excludeUserID != 0 {
		query = query.Where("id <> ?", excludeUserID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) FindByID(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).
		Where("username = ? COLLATE NOCASE", username).
		First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("username = ? COLLATE NOCASE", username).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := repo.database.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return normalizeWriteError(repo.database.WithContext(ctx).Create(user).Error)
}

func (repo *UserRepository) UpdateByID(ctx context.Context, userID uint, updates map[string]any) error {
	result := repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return normalizeWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateExclusiveRole applies updates to a user while keeping exclusiveRole
// held by at most one active account. It reports conflict=true, without
// writing anything, when the update would create a second active holder.
func (repo *UserRepository) UpdateExclusiveRole(ctx context.Context, userID uint, updates map[string]any, exclusiveRole string) (bool, error) {
	conflict := false
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, userID).Error; err != nil {
			return err
		}

		role := target.Role
		if value, ok := updates["role"].(string); ok {
			role = value
		}
		isActive := target.IsActive
		if value, ok := updates["is_active"].(bool); ok {
			isActive = value
		}

		if role == exclusiveRole && isActive {
			holders, err := countActiveByRole(tx, exclusiveRole, userID)
			if err != nil {
				return err
			}
			if holders > 0 {
				conflict = true
				return nil
			}
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	})

	err = normalizeWriteError(err)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true, nil
	}
	return conflict, err
}

// DeleteAccountAndTasks removes the user and every task it owns. deleted is
// false when no such user exists.
func (repo *UserRepository) DeleteAccountAndTasks(ctx context.Context, userID uint) (bool, error) {
	deleted := false
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

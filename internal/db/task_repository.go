package db

import (
	"context"

	"github.com/terraincognita07/taskdesk/internal/models"
	"gorm.io/gorm"
)

type TaskRepository struct {
	database *gorm.DB
}

func NewTaskRepository(database *gorm.DB) *TaskRepository {
	return &TaskRepository{database: database}
}

func (repo *TaskRepository) ListByUser(ctx context.Context, userID uint) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) FindByID(ctx context.Context, taskID uint) (models.Task, error) {
	var task models.Task
	if err := repo.database.WithContext(ctx).First(&task, taskID).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (repo *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	return normalizeWriteError(repo.database.WithContext(ctx).Create(task).Error)
}

// UpdateFields writes only the given columns and returns the stored row.
func (repo *TaskRepository) UpdateFields(ctx context.Context, taskID uint, updates map[string]any) (models.Task, error) {
	var updated models.Task
	err := repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&updated, taskID).Error
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

func (repo *TaskRepository) Delete(ctx context.Context, taskID uint) (bool, error) {
	result := repo.database.WithContext(ctx).Delete(&models.Task{}, taskID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

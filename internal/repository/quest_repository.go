package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"finquest-server/internal/model"
)

type QuestRepository struct {
	db *gorm.DB
}

func NewQuestRepository(db *gorm.DB) *QuestRepository {
	return &QuestRepository{db: db}
}

func (r *QuestRepository) Create(ctx context.Context, quest *model.Quest) error {
	if err := r.db.WithContext(ctx).Create(quest).Error; err != nil {
		return fmt.Errorf("create quest failed: %w", err)
	}
	return nil
}

func (r *QuestRepository) GetByID(ctx context.Context, id uint) (*model.Quest, error) {
	var quest model.Quest
	if err := r.db.WithContext(ctx).First(&quest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query quest by id failed: %w", err)
	}
	return &quest, nil
}

func (r *QuestRepository) List(ctx context.Context) ([]model.Quest, error) {
	var quests []model.Quest
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&quests).Error; err != nil {
		return nil, fmt.Errorf("list quests failed: %w", err)
	}
	return quests, nil
}

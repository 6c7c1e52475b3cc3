package app

import (
	"context"
	"strings"

	"finquest-server/internal/model"
)

type QuestStore interface {
	Create(ctx context.Context, quest *model.Quest) error
	GetByID(ctx context.Context, id uint) (*model.Quest, error)
	List(ctx context.Context) ([]model.Quest, error)
}

type QuestService struct {
	quests QuestStore
}

type CreateQuestInput struct {
	Title        string
	Description  string
	TargetAmount int64
}

func NewQuestService(quests QuestStore) *QuestService {
	return &QuestService{quests: quests}
}

func (s *QuestService) CreateQuest(ctx context.Context, input CreateQuestInput) (*model.Quest, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrMissingTitle
	}
	if input.TargetAmount < 0 {
		return nil, ErrInvalidInput
	}

	quest := &model.Quest{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		TargetAmount: input.TargetAmount,
	}
	if err := s.quests.Create(ctx, quest); err != nil {
		return nil, err
	}
	return quest, nil
}

func (s *QuestService) ListQuests(ctx context.Context) ([]model.Quest, error) {
	return s.quests.List(ctx)
}

func (s *QuestService) GetQuest(ctx context.Context, id uint) (*model.Quest, error) {
	quest, err := s.quests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quest == nil {
		return nil, ErrQuestNotFound
	}
	return quest, nil
}

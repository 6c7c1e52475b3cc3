package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"finquest-server/internal/model"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction failed: %w", err)
	}
	return nil
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by user", "user_id = ?", userID)
}

func (r *TransactionRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by category", "category = ?", category)
}

func (r *TransactionRepository) ListByType(ctx context.Context, txType model.TransactionType) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by type", "type = ?", txType)
}

func (r *TransactionRepository) ListByQuestID(ctx context.Context, questID uint) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by quest", "quest_id = ?", questID)
}

func (r *TransactionRepository) ListByUserIDAndCategory(ctx context.Context, userID uint, category model.Category) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by user and category", "user_id = ? AND category = ?", userID, category)
}

func (r *TransactionRepository) ListByUserIDAndQuestID(ctx context.Context, userID, questID uint) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by user and quest", "user_id = ? AND quest_id = ?", userID, questID)
}

func (r *TransactionRepository) ListByUserIDAndType(ctx context.Context, userID uint, txType model.TransactionType) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by user and type", "user_id = ? AND type = ?", userID, txType)
}

// ListByUserIDCreatedBetween matches start <= created_at <= end.
func (r *TransactionRepository) ListByUserIDCreatedBetween(ctx context.Context, userID uint, start, end time.Time) ([]model.Transaction, error) {
	return r.find(ctx, "list transactions by user and date", "user_id = ? AND created_at BETWEEN ? AND ?", userID, start, end)
}

func (r *TransactionRepository) find(ctx context.Context, op string, query string, args ...interface{}) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := r.db.WithContext(ctx).Where(query, args...).Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return txs, nil
}

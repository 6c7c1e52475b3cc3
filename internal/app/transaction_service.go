package app

import (
	"context"
	"log/slog"
	"time"

	"finquest-server/internal/model"
)

type TransactionStore interface {
	Create(ctx context.Context, tx *model.Transaction) error
	ListByUserID(ctx context.Context, userID uint) ([]model.Transaction, error)
	ListByCategory(ctx context.Context, category model.Category) ([]model.Transaction, error)
	ListByType(ctx context.Context, txType model.TransactionType) ([]model.Transaction, error)
	ListByQuestID(ctx context.Context, questID uint) ([]model.Transaction, error)
	ListByUserIDAndCategory(ctx context.Context, userID uint, category model.Category) ([]model.Transaction, error)
	ListByUserIDAndQuestID(ctx context.Context, userID, questID uint) ([]model.Transaction, error)
	ListByUserIDAndType(ctx context.Context, userID uint, txType model.TransactionType) ([]model.Transaction, error)
	ListByUserIDCreatedBetween(ctx context.Context, userID uint, start, end time.Time) ([]model.Transaction, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

type QuestLookup interface {
	GetByID(ctx context.Context, id uint) (*model.Quest, error)
}

// TransactionCache stores per-user lists under a version. A list read from the
// store is written back with the version seen before the read, and any write
// to the store moves the user to a new version.
type TransactionCache interface {
	GetUserTransactions(ctx context.Context, userID uint) ([]model.Transaction, int64, bool, error)
	SetUserTransactions(ctx context.Context, userID uint, version int64, txs []model.Transaction) error
	InvalidateUserTransactions(ctx context.Context, userID uint) error
}

type TransactionService struct {
	txs    TransactionStore
	users  UserLookup
	quests QuestLookup
	cache  TransactionCache
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

type SaveTransactionInput struct {
	UserID      uint
	Category    string
	Type        string
	QuestID     *uint
	Amount      int64
	Description string
	CreatedAt   time.Time
}

func NewTransactionService(
	txs TransactionStore,
	users UserLookup,
	quests QuestLookup,
	cache TransactionCache,
	logger *slog.Logger,
	loc *time.Location,
) *TransactionService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &TransactionService{
		txs:    txs,
		users:  users,
		quests: quests,
		cache:  cache,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

func (s *TransactionService) GetTransactionsByUserID(ctx context.Context, userID uint) ([]model.Transaction, error) {
	cacheable := false
	var version int64
	if s.cache != nil {
		cached, v, hit, err := s.cache.GetUserTransactions(ctx, userID)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "read transaction cache failed", "user_id", userID, "error", err)
		case hit:
			return cached, nil
		default:
			cacheable, version = true, v
		}
	}

	txs, err := s.txs.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetUserTransactions(ctx, userID, version, txs); err != nil {
			s.logger.WarnContext(ctx, "write transaction cache failed", "user_id", userID, "error", err)
		}
	}
	return txs, nil
}

func (s *TransactionService) GetTransactionsByCategory(ctx context.Context, category model.Category) ([]model.Transaction, error) {
	return s.txs.ListByCategory(ctx, category)
}

func (s *TransactionService) GetTransactionsByType(ctx context.Context, txType model.TransactionType) ([]model.Transaction, error) {
	return s.txs.ListByType(ctx, txType)
}

func (s *TransactionService) GetTransactionsByQuestID(ctx context.Context, questID uint) ([]model.Transaction, error) {
	return s.txs.ListByQuestID(ctx, questID)
}

func (s *TransactionService) GetTransactionsByUserIDAndCategory(ctx context.Context, userID uint, category model.Category) ([]model.Transaction, error) {
	return s.txs.ListByUserIDAndCategory(ctx, userID, category)
}

func (s *TransactionService) GetTransactionsByUserIDAndQuestID(ctx context.Context, userID, questID uint) ([]model.Transaction, error) {
	return s.txs.ListByUserIDAndQuestID(ctx, userID, questID)
}

func (s *TransactionService) GetTransactionsByUserIDAndType(ctx context.Context, userID uint, txType model.TransactionType) ([]model.Transaction, error) {
	return s.txs.ListByUserIDAndType(ctx, userID, txType)
}

// GetTransactionsByUserIDAndDate returns the user's transactions created
// between 00:00:00 and 23:59:59 of date's calendar day.
func (s *TransactionService) GetTransactionsByUserIDAndDate(ctx context.Context, userID uint, date time.Time) ([]model.Transaction, error) {
	start, end := DayRange(date, s.loc)
	return s.txs.ListByUserIDCreatedBetween(ctx, userID, start, end)
}

func (s *TransactionService) SaveTransaction(ctx context.Context, input SaveTransactionInput) (*model.Transaction, error) {
	category, err := model.ParseCategory(input.Category)
	if err != nil {
		return nil, ErrInvalidCategory
	}
	txType, err := model.ParseTransactionType(input.Type)
	if err != nil {
		return nil, ErrInvalidTransactionType
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if input.QuestID != nil {
		quest, err := s.quests.GetByID(ctx, *input.QuestID)
		if err != nil {
			return nil, err
		}
		if quest == nil {
			return nil, ErrQuestNotFound
		}
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().In(s.loc)
	}

	tx := &model.Transaction{
		UserID:      input.UserID,
		Category:    category,
		Type:        txType,
		QuestID:     input.QuestID,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   createdAt,
	}
	if err := s.txs.Create(ctx, tx); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateUserTransactions(ctx, input.UserID); err != nil {
			s.logger.WarnContext(ctx, "invalidate transaction cache failed", "user_id", input.UserID, "error", err)
		}
	}
	return tx, nil
}

// DayRange returns [00:00:00, 23:59:59] of date's calendar day in loc. The
// fractional part of the final second falls outside the range.
func DayRange(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, 0, loc)
	return start, end
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"finquest-server/internal/model"
	"finquest-server/internal/repository"
)

var errBoom = errors.New("boom")

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User

	createErr error
	updateErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[uint]*model.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.findBy(func(u *model.User) bool { return u.Email == email }), nil
}

func (f *fakeUserStore) GetByNickname(_ context.Context, nickname string) (*model.User, error) {
	return f.findBy(func(u *model.User) bool { return u.Nickname == nickname }), nil
}

func (f *fakeUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := f.GetByEmail(ctx, email)
	return u != nil, nil
}

func (f *fakeUserStore) CountByProfile(_ context.Context, path string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.Profile == path {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) DeleteByID(_ context.Context, id uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return false, nil
	}
	delete(f.users, id)
	return true, nil
}

func (f *fakeUserStore) findBy(match func(*model.User) bool) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (f *fakeUserStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeProfileStore struct {
	saved   map[string]string
	removed []string
	err     error
}

func (f *fakeProfileStore) Save(filename string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	path := "/uploads/" + filename
	f.saved[path] = string(data)
	return path, nil
}

func (f *fakeProfileStore) Remove(path string) error {
	f.removed = append(f.removed, path)
	delete(f.saved, path)
	return nil
}

type fakePublisher struct {
	events []model.UserEvent
	err    error
}

func (f *fakePublisher) PublishUserEvent(_ context.Context, event model.UserEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeTransactionStore struct {
	nextID uint
	txs    []model.Transaction

	listCalls int
	createErr error
	// afterList runs once the user's list has been computed, before it is returned.
	afterList func()

	lastStart time.Time
	lastEnd   time.Time
}

func (f *fakeTransactionStore) Create(_ context.Context, tx *model.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	tx.ID = f.nextID
	f.txs = append(f.txs, *tx)
	return nil
}

func (f *fakeTransactionStore) filter(match func(model.Transaction) bool) []model.Transaction {
	var out []model.Transaction
	for _, tx := range f.txs {
		if match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func (f *fakeTransactionStore) ListByUserID(_ context.Context, userID uint) ([]model.Transaction, error) {
	f.listCalls++
	out := f.filter(func(tx model.Transaction) bool { return tx.UserID == userID })
	if hook := f.afterList; hook != nil {
		f.afterList = nil
		hook()
	}
	return out, nil
}

func (f *fakeTransactionStore) ListByCategory(_ context.Context, c model.Category) ([]model.Transaction, error) {
	return f.filter(func(tx model.Transaction) bool { return tx.Category == c }), nil
}

func (f *fakeTransactionStore) ListByType(_ context.Context, t model.TransactionType) ([]model.Transaction, error) {
	return f.filter(func(tx model.Transaction) bool { return tx.Type == t }), nil
}

func (f *fakeTransactionStore) ListByQuestID(_ context.Context, questID uint) ([]model.Transaction, error) {
	return f.filter(func(tx model.Transaction) bool { return tx.QuestID != nil && *tx.QuestID == questID }), nil
}

func (f *fakeTransactionStore) ListByUserIDAndCategory(_ context.Context, userID uint, c model.Category) ([]model.Transaction, error) {
	return f.filter(func(tx model.Transaction) bool { return tx.UserID == userID && tx.Category == c }), nil
}

func (f *fakeTransactionStore) ListByUserIDAndQuestID(_ context.Context, userID, questID uint) ([]model.Transaction, error) {
	return f.filter(func(tx model.Transaction) bool {
		return tx.UserID == userID && tx.QuestID != nil && *tx.QuestID == questID
	}), nil
}

func (f *fakeTransactionStore) ListByUserIDAndType(_ context.Context, userID uint, t model.TransactionType) ([]model.Transaction, error) {
	return f.filter(func(tx model.Transaction) bool { return tx.UserID == userID && tx.Type == t }), nil
}

// ListByUserIDCreatedBetween mirrors SQL BETWEEN: both bounds inclusive.
func (f *fakeTransactionStore) ListByUserIDCreatedBetween(_ context.Context, userID uint, start, end time.Time) ([]model.Transaction, error) {
	f.lastStart, f.lastEnd = start, end
	return f.filter(func(tx model.Transaction) bool {
		return tx.UserID == userID && !tx.CreatedAt.Before(start) && !tx.CreatedAt.After(end)
	}), nil
}

type fakeQuestStore struct {
	nextID uint
	quests map[uint]*model.Quest
}

func newFakeQuestStore() *fakeQuestStore {
	return &fakeQuestStore{quests: map[uint]*model.Quest{}}
}

func (f *fakeQuestStore) Create(_ context.Context, q *model.Quest) error {
	f.nextID++
	q.ID = f.nextID
	cp := *q
	f.quests[q.ID] = &cp
	return nil
}

func (f *fakeQuestStore) GetByID(_ context.Context, id uint) (*model.Quest, error) {
	q, ok := f.quests[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestStore) List(_ context.Context) ([]model.Quest, error) {
	out := make([]model.Quest, 0, len(f.quests))
	for _, q := range f.quests {
		out = append(out, *q)
	}
	return out, nil
}

type fakeTxCache struct {
	versions      map[uint]int64
	entries       map[string][]model.Transaction
	getErr        error
	invalidations int
}

func newFakeTxCache() *fakeTxCache {
	return &fakeTxCache{versions: map[uint]int64{}, entries: map[string][]model.Transaction{}}
}

func fakeTxKey(userID uint, version int64) string {
	return fmt.Sprintf("%d:%d", userID, version)
}

func (f *fakeTxCache) GetUserTransactions(_ context.Context, userID uint) ([]model.Transaction, int64, bool, error) {
	if f.getErr != nil {
		return nil, 0, false, f.getErr
	}
	version := f.versions[userID]
	txs, ok := f.entries[fakeTxKey(userID, version)]
	return txs, version, ok, nil
}

func (f *fakeTxCache) SetUserTransactions(_ context.Context, userID uint, version int64, txs []model.Transaction) error {
	f.entries[fakeTxKey(userID, version)] = txs
	return nil
}

func (f *fakeTxCache) InvalidateUserTransactions(_ context.Context, userID uint) error {
	f.invalidations++
	f.versions[userID]++
	return nil
}

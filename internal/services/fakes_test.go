package service

import (
	"context"
	"sync"
	"time"

	redisinfra "github.com/rupayx/wallet-service/internal/infrastructure/redis"
	"github.com/rupayx/wallet-service/internal/models"
	pkgerrors "github.com/rupayx/wallet-service/pkg/errors"
	"github.com/shopspring/decimal"
)

// In-memory fakes backing the service tests. They keep the same
// bookkeeping rules as the Postgres repositories so balance effects can
// be asserted end to end.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return pkgerrors.ErrUserExists
	}
	u := *user
	r.users[user.Email] = &u
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, pkgerrors.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByReferralCode(_ context.Context, code string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ReferralCode == code {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pkgerrors.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ChangeBalance(_ context.Context, email string, delta decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return decimal.Zero, pkgerrors.ErrUserNotFound
	}
	u.Balance = u.Balance.Add(delta)
	return u.Balance, nil
}

func (r *fakeUserRepo) SetBanned(_ context.Context, email string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return pkgerrors.ErrUserNotFound
	}
	u.IsBanned = banned
	return nil
}

func (r *fakeUserRepo) balance(email string) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[email].Balance
}

type fakeTxRepo struct {
	mu    sync.Mutex
	users *fakeUserRepo
	txs   []*models.Transaction
}

func newFakeTxRepo(users *fakeUserRepo) *fakeTxRepo {
	return &fakeTxRepo{users: users}
}

func (r *fakeTxRepo) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *tx
	r.txs = append(r.txs, &copied)
	return nil
}

func (r *fakeTxRepo) CreateWithDebit(ctx context.Context, tx *models.Transaction) error {
	r.users.mu.Lock()
	u, ok := r.users.users[tx.UserEmail]
	if !ok {
		r.users.mu.Unlock()
		return pkgerrors.ErrUserNotFound
	}
	if u.Balance.LessThan(tx.Amount) {
		r.users.mu.Unlock()
		return pkgerrors.ErrInsufficientFunds
	}
	u.Balance = u.Balance.Sub(tx.Amount)
	r.users.mu.Unlock()
	return r.Create(ctx, tx)
}

func (r *fakeTxRepo) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range r.txs {
		if tx.ID == id {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, pkgerrors.ErrTransactionNotFound
}

func (r *fakeTxRepo) ListByUser(_ context.Context, userEmail string) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for i := len(r.txs) - 1; i >= 0; i-- {
		if r.txs[i].UserEmail == userEmail {
			out = append(out, *r.txs[i])
		}
	}
	return out, nil
}

func (r *fakeTxRepo) ListPending(_ context.Context, txType models.TransactionType) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for i := len(r.txs) - 1; i >= 0; i-- {
		if r.txs[i].Type == txType && r.txs[i].Status == models.StatusPending {
			out = append(out, *r.txs[i])
		}
	}
	return out, nil
}

func (r *fakeTxRepo) ApplyStatus(ctx context.Context, id string, newStatus models.TransactionStatus, balanceDelta decimal.Decimal) (bool, error) {
	r.mu.Lock()
	var target *models.Transaction
	for _, tx := range r.txs {
		if tx.ID == id {
			target = tx
			break
		}
	}
	if target == nil || target.Status != models.StatusPending {
		r.mu.Unlock()
		return false, nil
	}
	target.Status = newStatus
	email := target.UserEmail
	r.mu.Unlock()

	if !balanceDelta.IsZero() {
		if _, err := r.users.ChangeBalance(ctx, email, balanceDelta); err != nil {
			return false, err
		}
	}
	return true, nil
}

type fakeUpiRepo struct {
	mu       sync.Mutex
	accounts []*models.UpiAccount
}

func (r *fakeUpiRepo) Create(_ context.Context, account *models.UpiAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *account
	r.accounts = append(r.accounts, &copied)
	return nil
}

func (r *fakeUpiRepo) List(_ context.Context) ([]models.UpiAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.UpiAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeUpiRepo) GetByUpiID(_ context.Context, upiID string) (*models.UpiAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.UpiID == upiID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, pkgerrors.ErrUpiNotFound
}

func (r *fakeUpiRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.accounts {
		if a.ID == id {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			return nil
		}
	}
	return pkgerrors.ErrUpiNotFound
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks []*models.DepositTask
}

func (r *fakeTaskRepo) Create(_ context.Context, task *models.DepositTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks = append(r.tasks, &copied)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*models.DepositTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, pkgerrors.ErrTaskNotFound
}

func (r *fakeTaskRepo) List(_ context.Context) ([]models.DepositTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.DepositTask, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return pkgerrors.ErrTaskNotFound
}

type fakeSettingsRepo struct {
	mu    sync.Mutex
	bank  *models.BankDetails
	help  *models.HelpLinks
	creds *models.AdminCredentials
}

func (r *fakeSettingsRepo) GetBankDetails(_ context.Context) (*models.BankDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bank == nil {
		return nil, pkgerrors.ErrSettingNotFound
	}
	copied := *r.bank
	return &copied, nil
}

func (r *fakeSettingsRepo) SaveBankDetails(_ context.Context, details *models.BankDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *details
	r.bank = &copied
	return nil
}

func (r *fakeSettingsRepo) GetHelpLinks(_ context.Context) (*models.HelpLinks, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.help == nil {
		return nil, pkgerrors.ErrSettingNotFound
	}
	copied := *r.help
	return &copied, nil
}

func (r *fakeSettingsRepo) SaveHelpLinks(_ context.Context, links *models.HelpLinks) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *links
	r.help = &copied
	return nil
}

func (r *fakeSettingsRepo) GetAdminCredentials(_ context.Context) (*models.AdminCredentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.creds == nil {
		return nil, pkgerrors.ErrSettingNotFound
	}
	copied := *r.creds
	return &copied, nil
}

func (r *fakeSettingsRepo) SaveAdminCredentials(_ context.Context, creds *models.AdminCredentials) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *creds
	r.creds = &copied
	return nil
}

type sentEvent struct {
	topic string
	key   string
	value []byte
}

type fakeProducer struct {
	mu     sync.Mutex
	events []sentEvent
}

func (p *fakeProducer) Send(_ context.Context, topic, key string, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, sentEvent{topic: topic, key: key, value: value})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

type redisEntry struct {
	value     string
	expiresAt time.Time
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]redisEntry
	now  time.Time
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]redisEntry), now: time.Now()}
}

func (r *fakeRedis) advance(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = r.now.Add(d)
}

func (r *fakeRedis) live(key string) (redisEntry, bool) {
	e, ok := r.data[key]
	if !ok || (!e.expiresAt.IsZero() && !e.expiresAt.After(r.now)) {
		return redisEntry{}, false
	}
	return e, true
}

func (r *fakeRedis) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live(key)
	if !ok {
		return "", redisinfra.ErrKeyNotFound
	}
	return e.value, nil
}

func (r *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = r.now.Add(expiration)
	}
	r.data[key] = redisEntry{value: value.(string), expiresAt: expiresAt}
	return nil
}

func (r *fakeRedis) SetNX(_ context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live(key); ok {
		return false, nil
	}
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = r.now.Add(expiration)
	}
	r.data[key] = redisEntry{value: value.(string), expiresAt: expiresAt}
	return true, nil
}

func (r *fakeRedis) Del(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *fakeRedis) TTL(_ context.Context, key string) (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live(key)
	if !ok {
		return -2 * time.Second, nil
	}
	if e.expiresAt.IsZero() {
		return -1 * time.Second, nil
	}
	return e.expiresAt.Sub(r.now), nil
}

func (r *fakeRedis) Close() error { return nil }

type fakeSender struct {
	mu    sync.Mutex
	codes []string
	fail  bool
}

func (s *fakeSender) Send(_ context.Context, _, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return pkgerrors.ErrInternal
	}
	s.codes = append(s.codes, code)
	return nil
}

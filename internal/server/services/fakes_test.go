package services

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/paket-core/funder/internal/common"
	"github.com/paket-core/funder/internal/dbx"
	"github.com/paket-core/funder/internal/logging"
	"github.com/paket-core/funder/internal/server/config"
	"github.com/paket-core/funder/internal/server/models"
	"github.com/paket-core/funder/internal/server/repositories/purchases"
	"github.com/paket-core/funder/internal/server/repositories/testresults"
	"github.com/paket-core/funder/internal/server/repositories/userinfos"
	"github.com/paket-core/funder/internal/server/repositories/users"
)

// --- in-memory store behind every fake repository ---

type infoRow struct {
	id     int64
	pubkey string
	update models.UserInfoUpdate
	at     time.Time
}

type memStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[string]*models.User
	infos     []infoRow
	results   []models.TestResult
	purchases []models.Purchase

	sumErr error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*models.User)}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return &memUsers{m.s} }
func (m *fakeRepoManager) UserInfos(dbx.DBTX) userinfos.Repository      { return &memInfos{m.s} }
func (m *fakeRepoManager) TestResults(dbx.DBTX) testresults.Repository  { return &memResults{m.s} }
func (m *fakeRepoManager) Purchases(dbx.DBTX) purchases.Repository      { return &memPurchases{m.s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.Pubkey]; ok {
		return common.WithMetadata(common.KindDuplicateKey, "pubkey "+u.Pubkey+" is non unique",
			map[string]string{"field": "pubkey", "value": u.Pubkey})
	}
	for _, other := range r.s.users {
		if other.CallSign == u.CallSign {
			return common.WithMetadata(common.KindDuplicateKey, "call_sign "+u.CallSign+" is non unique",
				map[string]string{"field": "call_sign", "value": u.CallSign})
		}
	}
	cp := *u
	r.s.users[u.Pubkey] = &cp
	return nil
}

func (r *memUsers) GetByPubkey(_ context.Context, pubkey string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[pubkey]
	if !ok {
		return nil, common.Newf(common.KindNotFound, "user with pubkey %s does not exist", pubkey)
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByCallSign(_ context.Context, callSign string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.CallSign == callSign {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.Newf(common.KindNotFound, "user with call_sign %s does not exist", callSign)
}

func (r *memUsers) LockForUpdate(ctx context.Context, pubkey string) error {
	_, err := r.GetByPubkey(ctx, pubkey)
	return err
}

func (r *memUsers) List(context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CallSign < out[j].CallSign })
	return out, nil
}

type memInfos struct{ s *memStore }

func (r *memInfos) Insert(_ context.Context, pubkey string, update models.UserInfoUpdate, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[pubkey]; !ok {
		return common.Newf(common.KindNotFound, "no user with pubkey %s", pubkey)
	}
	r.s.infos = append(r.s.infos, infoRow{id: r.s.id(), pubkey: pubkey, update: update, at: at})
	return nil
}

func (r *memInfos) Current(_ context.Context, pubkey string) (*models.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []infoRow
	for _, row := range r.s.infos {
		if row.pubkey == pubkey {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, common.Newf(common.KindNotFound, "user with pubkey %s does not exist", pubkey)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].at.Equal(rows[j].at) {
			return rows[i].at.Before(rows[j].at)
		}
		return rows[i].id < rows[j].id
	})

	info := &models.UserInfo{Pubkey: pubkey}
	for _, row := range rows {
		if row.update.FullName != nil {
			info.FullName = row.update.FullName
		}
		if row.update.PhoneNumber != nil {
			info.PhoneNumber = row.update.PhoneNumber
		}
		if row.update.Address != nil {
			info.Address = row.update.Address
		}
		info.UpdatedAt = row.at
	}
	return info, nil
}

type memResults struct{ s *memStore }

func (r *memResults) Insert(_ context.Context, tr *models.TestResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[tr.Pubkey]; !ok {
		return common.Newf(common.KindNotFound, "no user with pubkey %s", tr.Pubkey)
	}
	tr.ID = r.s.id()
	r.s.results = append(r.s.results, *tr)
	return nil
}

func (r *memResults) Latest(_ context.Context, pubkey, name string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var latest *models.TestResult
	for i := range r.s.results {
		tr := &r.s.results[i]
		if tr.Pubkey != pubkey || tr.Name != name {
			continue
		}
		if latest == nil || tr.Timestamp.After(latest.Timestamp) ||
			(tr.Timestamp.Equal(latest.Timestamp) && tr.ID > latest.ID) {
			latest = tr
		}
	}
	if latest == nil {
		return 0, nil
	}
	return latest.Result, nil
}

type memPurchases struct{ s *memStore }

func (r *memPurchases) Create(_ context.Context, p *models.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[p.UserPubkey]; !ok {
		return common.Newf(common.KindNotFound, "no user with pubkey %s", p.UserPubkey)
	}
	for _, other := range r.s.purchases {
		if other.PaymentAddress == p.PaymentAddress {
			return common.WithMetadata(common.KindDuplicateKey, "payment_address "+p.PaymentAddress+" is non unique",
				map[string]string{"field": "payment_address", "value": p.PaymentAddress})
		}
	}
	p.ID = r.s.id()
	r.s.purchases = append(r.s.purchases, *p)
	return nil
}

func (r *memPurchases) GetByAddress(_ context.Context, address string) (*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.purchases {
		if p.PaymentAddress == address {
			cp := p
			return &cp, nil
		}
	}
	return nil, common.Newf(common.KindNotFound, "no purchase with payment address %s", address)
}

func (r *memPurchases) SumEuroCents(_ context.Context, pubkey string, status models.PaymentStatus, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.sumErr != nil {
		return 0, r.s.sumErr
	}
	var sum int64
	for _, p := range r.s.purchases {
		if p.UserPubkey == pubkey && p.Paid == status && p.Timestamp.After(since) {
			sum += p.EuroCents
		}
	}
	return sum, nil
}

func (r *memPurchases) ListByStatus(_ context.Context, status models.PaymentStatus) ([]*models.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*models.Purchase
	for _, p := range r.s.purchases {
		if p.Paid == status {
			cp := p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPurchases) UpdateStatus(_ context.Context, address string, from, to models.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.purchases {
		p := &r.s.purchases[i]
		if p.PaymentAddress == address && p.Paid == from {
			p.Paid = to
			return true, nil
		}
	}
	return false, nil
}

// --- collaborators ---

type fakeIssuer struct {
	mu       sync.Mutex
	n        int
	networks []string
	err      error
}

func (f *fakeIssuer) IssueAddress(_ context.Context, network, xpub string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	f.n++
	f.networks = append(f.networks, network)
	return fmt.Sprintf("%s-addr-%d", network, f.n), nil
}

type fakeScorer struct {
	calls int
	score int64
	err   error
}

func (f *fakeScorer) ScoreBasic(context.Context, string, string, string) (int64, error) {
	f.calls++
	return f.score, f.err
}

type fakeChecker struct {
	balances map[string]int64
	errs     map[string]error
}

func (f *fakeChecker) Balance(_ context.Context, _ models.PaymentCurrency, address string) (*big.Int, error) {
	if err := f.errs[address]; err != nil {
		return nil, err
	}
	return big.NewInt(f.balances[address]), nil
}

// --- fixture ---

type fixture struct {
	store  *memStore
	mock   sqlmock.Sqlmock
	issuer *fakeIssuer
	scorer *fakeScorer
	now    time.Time

	allowance *AllowanceService
	users     *UserService
	purchases *PurchaseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	f := &fixture{
		store:  newMemStore(),
		mock:   mock,
		issuer: &fakeIssuer{},
		scorer: &fakeScorer{score: 1},
		now:    time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	rm := &fakeRepoManager{s: f.store}
	clock := func() time.Time { return f.now }

	f.allowance = NewAllowanceService(db, rm, cfg)
	f.users = NewUserService(db, rm, f.allowance, f.scorer, logging.Nop())
	f.users.now = clock
	f.purchases = NewPurchaseService(db, rm, f.allowance, f.issuer, cfg, logging.Nop())
	f.purchases.now = clock
	return f
}

func (f *fixture) addUser(t *testing.T, pubkey, callSign string) {
	t.Helper()
	_, err := f.users.CreateUser(context.Background(), pubkey, callSign)
	require.NoError(t, err)
}

func (f *fixture) passBasic(t *testing.T, pubkey string) {
	t.Helper()
	_, err := f.users.RecordTestResult(context.Background(), pubkey, common.BasicTestName, 1)
	require.NoError(t, err)
}

func (f *fixture) addPurchase(pubkey, address string, cents int64, status models.PaymentStatus, at time.Time) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.purchases = append(f.store.purchases, models.Purchase{
		ID:                f.store.id(),
		Timestamp:         at,
		UserPubkey:        pubkey,
		PaymentAddress:    address,
		PaymentCurrency:   models.PaymentBTC,
		RequestedCurrency: models.RequestedBUL,
		EuroCents:         cents,
		Paid:              status,
	})
}

func (f *fixture) expectTx(commit bool) {
	f.mock.ExpectBegin()
	if commit {
		f.mock.ExpectCommit()
	} else {
		f.mock.ExpectRollback()
	}
}

func addresses(ps []*models.Purchase) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.PaymentAddress)
	}
	return out
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sjperalta/komplek-api/internal/config"
	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/remote"
	"github.com/sjperalta/komplek-api/internal/repository"
	"github.com/sjperalta/komplek-api/internal/storage"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

const testPeriod = "2026-10"

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type testEnv struct {
	store *storage.MemoryStore
	repos *repository.Repositories
	svc   *Services
}

func newTestEnv(t *testing.T, gateway DuesGateway, policy string) *testEnv {
	t.Helper()
	store := storage.NewMemoryStore()
	return newTestEnvWithStore(t, store, gateway, policy)
}

func newTestEnvWithStore(t *testing.T, store *storage.MemoryStore, gateway DuesGateway, policy string) *testEnv {
	t.Helper()
	repos := repository.NewRepositories(store)
	cfg := &config.Config{ClosingPolicy: policy}
	return &testEnv{
		store: store,
		repos: repos,
		svc:   NewServices(repos, nil, cfg, gateway, fixedClock(testNow)),
	}
}

// rejectingStore fails every write to one key
type rejectingStore struct {
	*storage.MemoryStore
	key string
}

var errStoreWrite = errors.New("write rejected")

func (s *rejectingStore) Set(ctx context.Context, key string, value []byte) error {
	if key == s.key {
		return errStoreWrite
	}
	return s.MemoryStore.Set(ctx, key, value)
}

func (e *testEnv) seedResidents(t *testing.T, residents ...models.Resident) {
	t.Helper()
	require.NoError(t, e.repos.Resident.ReplaceAll(context.Background(), residents))
}

func (e *testEnv) ledger(t *testing.T) []models.Transaction {
	t.Helper()
	txs, err := e.repos.Ledger.FindAll(context.Background())
	require.NoError(t, err)
	return txs
}

func (e *testEnv) duesEntries(t *testing.T, key models.DuesKey) []models.Transaction {
	t.Helper()
	var out []models.Transaction
	for _, tx := range e.ledger(t) {
		if tx.IsDuesFor(key) {
			out = append(out, tx)
		}
	}
	return out
}

func (e *testEnv) notificationsOf(t *testing.T, notifType string) []models.Notification {
	t.Helper()
	ns, err := e.repos.Notification.FindAll(context.Background())
	require.NoError(t, err)
	var out []models.Notification
	for _, n := range ns {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

func resident(id, name string) models.Resident {
	return models.Resident{ID: models.ResidentID(id), Nama: name, Status: models.ResidentStatusActive}
}

// mockGateway records calls and answers with the configured funcs
type mockGateway struct {
	mu    sync.Mutex
	calls []string

	mockStatus        func(ctx context.Context, period string) (*remote.StatusResponse, error)
	mockGenerate      func(ctx context.Context, period string, amount int64) error
	mockMark          func(ctx context.Context, period, residentID string, paid bool, amount int64) error
	mockUpdateNominal func(ctx context.Context, period string, amount int64) error
}

func (m *mockGateway) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockGateway) Status(ctx context.Context, period string) (*remote.StatusResponse, error) {
	m.record("status")
	if m.mockStatus != nil {
		return m.mockStatus(ctx, period)
	}
	return &remote.StatusResponse{}, nil
}

func (m *mockGateway) Generate(ctx context.Context, period string, amount int64) error {
	m.record("generate")
	if m.mockGenerate != nil {
		return m.mockGenerate(ctx, period, amount)
	}
	return nil
}

func (m *mockGateway) Mark(ctx context.Context, period, residentID string, paid bool, amount int64) error {
	m.record("mark")
	if m.mockMark != nil {
		return m.mockMark(ctx, period, residentID, paid, amount)
	}
	return nil
}

func (m *mockGateway) UpdateNominal(ctx context.Context, period string, amount int64) error {
	m.record("update-nominal")
	if m.mockUpdateNominal != nil {
		return m.mockUpdateNominal(ctx, period, amount)
	}
	return nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/sjperalta/komplek-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResidentRepository_LegacyKeyFallback(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewResidentRepository(store)

	residents, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, residents)

	require.NoError(t, store.Set(ctx, storage.KeyResidentsLegacy, []byte(`[{"id":3,"nama":"Lama","status":"aktif"},{"id":4,"nama":"Pindah","status":"inactive"}]`)))
	residents, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, residents, 2)
	assert.Equal(t, models.ResidentID("3"), residents[0].ID)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// the current key wins once written
	require.NoError(t, repo.ReplaceAll(ctx, []models.Resident{{ID: "9", Nama: "Baru"}}))
	found, err := repo.FindByID(ctx, "9")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Baru", found.Nama)

	missing, err := repo.FindByID(ctx, "3")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFlagRepository(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewFlagRepository(store)

	local, err := repo.IsLocalMode(ctx)
	require.NoError(t, err)
	assert.False(t, local)

	require.NoError(t, repo.SetLocalMode(ctx, true))
	local, _ = repo.IsLocalMode(ctx)
	assert.True(t, local)

	require.NoError(t, repo.SetLocalMode(ctx, false))
	_, err = store.Get(ctx, storage.KeyDemoMode)
	assert.ErrorIs(t, err, storage.ErrNotFound, "clearing removes the key")

	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	v, err := repo.MarkDirty(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, "1792141200000", v)
	got, err := repo.Dirty(ctx)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// values written as JSON strings by the dashboard
	require.NoError(t, store.Set(ctx, storage.KeyDirty, []byte(`"1792141200001"`)))
	got, _ = repo.Dirty(ctx)
	assert.Equal(t, "1792141200001", got)

	notified, _ := repo.ClosedNotified(ctx, "2026-10")
	assert.False(t, notified)
	require.NoError(t, repo.SetClosedNotified(ctx, "2026-10", true))
	notified, _ = repo.ClosedNotified(ctx, "2026-10")
	assert.True(t, notified)
	require.NoError(t, repo.SetClosedNotified(ctx, "2026-10", false))
	notified, _ = repo.ClosedNotified(ctx, "2026-10")
	assert.False(t, notified)
}

func TestDuesRepositories(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repos := NewRepositories(store)

	require.NoError(t, store.Set(ctx, storage.KeyDuesConfigs, []byte("null")))
	configs, err := repos.DuesConfig.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, configs)

	legacy, err := repos.DuesConfig.FindLegacy(ctx)
	require.NoError(t, err)
	assert.Nil(t, legacy)

	require.NoError(t, store.Set(ctx, storage.KeyLegacyDuesConfig, []byte(`{"amount":100000,"month":"2026-09"}`)))
	legacy, err = repos.DuesConfig.FindLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.LegacyDuesConfig{Amount: 100000, Month: "2026-09"}, legacy)
	require.NoError(t, repos.DuesConfig.DeleteLegacy(ctx))
	legacy, _ = repos.DuesConfig.FindLegacy(ctx)
	assert.Nil(t, legacy)

	payments := models.DuesPayments{}
	payments.SetPaid("2026-10", "7", true)
	require.NoError(t, repos.DuesPayment.SaveAll(ctx, payments))
	raw, err := store.Get(ctx, storage.KeyDuesPayments)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2026-10":{"paid":["7"]}}`, string(raw))
}

func TestDuesPaymentRepository_NumericIDs(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyDuesPayments, []byte(`{"2026-10":{"paid":[7,"8"]},"2026-09":{}}`)))
	repo := NewDuesPaymentRepository(store)

	payments, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.True(t, payments.IsPaid("2026-10", "7"))
	assert.True(t, payments.IsPaid("2026-10", "8"))
	assert.False(t, payments.IsPaid("2026-09", "7"))

	require.NoError(t, repo.SaveAll(ctx, payments))
	raw, err := store.Get(ctx, storage.KeyDuesPayments)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2026-10":{"paid":["7","8"]},"2026-09":{"paid":[]}}`, string(raw))
}

func TestLoadJSON_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeyTransactions, []byte(`{not json`)))

	_, err := NewLedgerRepository(store).FindAll(ctx)
	assert.ErrorContains(t, err, storage.KeyTransactions)
}

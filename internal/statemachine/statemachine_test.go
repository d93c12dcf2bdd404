package statemachine

import (
	"context"
	"testing"

	"github.com/sjperalta/komplek-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFSM(t *testing.T) {
	ctx := context.Background()

	m := NewModeFSM("")
	assert.Equal(t, models.DuesModeRemote, m.Current(), "unknown modes start remote")

	changed, err := m.Fallback(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, m.IsLocal())

	changed, err = m.Fallback(ctx)
	require.NoError(t, err)
	assert.False(t, changed, "already local")

	changed, err = m.Reset(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.DuesModeRemote, m.Current())

	changed, err = m.Reset(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.True(t, NewModeFSM(models.DuesModeLocal).IsLocal())
}

func TestPeriodFSM(t *testing.T) {
	ctx := context.Background()
	cfg := models.DuesConfig{Amount: 150000}

	p := NewPeriodFSM(&cfg)
	assert.Equal(t, PeriodStateOpen, p.Current())
	assert.False(t, p.Can(EventReopen))

	require.NoError(t, p.Close(ctx))
	assert.True(t, cfg.Closed)
	assert.Error(t, p.Close(ctx))

	p = NewPeriodFSM(&cfg)
	assert.Equal(t, PeriodStateClosed, p.Current(), "starts from the stored flag")
	require.NoError(t, p.Reopen(ctx))
	assert.False(t, cfg.Closed)
}

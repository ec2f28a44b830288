package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeGate/internal/domain/models"
	"TradeGate/pkg/store"
)

func TestSlippageCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("deviation at the limit passes", func(t *testing.T) {
		s := NewSlippageController(50, store.NewMemoryStore())
		assert.NoError(t, s.Check(ctx, "BTCUSD", 100, 100.5)) // exactly 50 bps
	})

	t.Run("deviation just over the limit rejects", func(t *testing.T) {
		s := NewSlippageController(50, store.NewMemoryStore())
		err := s.Check(ctx, "BTCUSD", 100, 100.51) // 51 bps
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidOrder)
		assert.Contains(t, err.Error(), "exceeds limit")
	})

	t.Run("negative deviation uses magnitude", func(t *testing.T) {
		s := NewSlippageController(50, store.NewMemoryStore())
		err := s.Check(ctx, "BTCUSD", 100, 99.4) // 60 bps below
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds limit")
	})

	t.Run("non-positive expected price is invalid", func(t *testing.T) {
		s := NewSlippageController(50, store.NewMemoryStore())
		err := s.Check(ctx, "BTCUSD", 0, 100)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidOrder)
	})

	t.Run("passing observation is recorded", func(t *testing.T) {
		st := store.NewMemoryStore()
		s := NewSlippageController(50, st)
		require.NoError(t, s.Check(ctx, "BTCUSD", 100, 100.2))
		assert.Equal(t, 1, st.ListLen(models.KeySlippage("BTCUSD")))
	})

	t.Run("rejected observation is not recorded", func(t *testing.T) {
		st := store.NewMemoryStore()
		s := NewSlippageController(50, st)
		require.Error(t, s.Check(ctx, "BTCUSD", 100, 101))
		assert.Zero(t, st.ListLen(models.KeySlippage("BTCUSD")))
	})
}

func TestSlippageUpdateLimit(t *testing.T) {
	ctx := context.Background()
	s := NewSlippageController(50, store.NewMemoryStore())

	require.NoError(t, s.UpdateLimit(80))
	assert.Equal(t, 80.0, s.Limit())
	assert.NoError(t, s.Check(ctx, "BTCUSD", 100, 100.6)) // 60 bps, now allowed

	err := s.UpdateLimit(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrLimitUpdateRejected)
	assert.Equal(t, 80.0, s.Limit(), "prior limit stays active")

	err = s.UpdateLimit(-10)
	assert.ErrorIs(t, err, models.ErrLimitUpdateRejected)
}

func TestSlippageDefaultLimit(t *testing.T) {
	s := NewSlippageController(0, store.NewMemoryStore())
	assert.Equal(t, 50.0, s.Limit())
}

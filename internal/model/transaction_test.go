package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionStatus(t *testing.T) {
	all := []TransactionStatus{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}
	allowed := map[TransactionStatus]map[TransactionStatus]bool{
		StatusPending:    {StatusProcessing: true, StatusCancelled: true},
		StatusProcessing: {StatusCompleted: true, StatusCancelled: true},
	}

	t.Run("CanTransitionTo_MatchesWorkflowEdges", func(t *testing.T) {
		for _, from := range all {
			for _, to := range all {
				require.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("Terminal_HasNoOutgoingEdges", func(t *testing.T) {
		for _, from := range all {
			if !from.Terminal() {
				continue
			}
			for _, to := range all {
				require.False(t, from.CanTransitionTo(to))
			}
		}
		require.True(t, StatusCompleted.Terminal())
		require.True(t, StatusCancelled.Terminal())
		require.False(t, StatusPending.Terminal())
	})

	t.Run("Valid_RejectsUnknown", func(t *testing.T) {
		require.True(t, StatusProcessing.Valid())
		require.False(t, TransactionStatus("DONE").Valid())
		require.False(t, TransactionStatus("").Valid())
	})
}

func TestTransactionType(t *testing.T) {
	require.Equal(t, 1, TxPurchase.Sign())
	require.Equal(t, -1, TxSale.Sign())
	require.Equal(t, -1, TxReturnToSupplier.Sign())
	require.True(t, TxReturnToSupplier.Valid())
	require.False(t, TransactionType("IN").Valid())
}

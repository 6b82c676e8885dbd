package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSyncPolicy(t *testing.T) {
	policy := DefaultSyncPolicy()

	require.Equal(t, []string{"on-hold", "cancelled", "expired"}, policy.InactiveStatuses)
	require.Equal(t, []string{"completed", "processing"}, policy.PurchasedStatuses)
	require.Equal(t, 999, policy.UnlimitedDownloadCount)
}

func TestIsInactiveStatus(t *testing.T) {
	policy := DefaultSyncPolicy()

	require.True(t, policy.IsInactiveStatus("cancelled"))
	require.True(t, policy.IsInactiveStatus("  Expired "))
	require.True(t, policy.IsInactiveStatus("ON-HOLD"))
	require.False(t, policy.IsInactiveStatus("active"))
	require.False(t, policy.IsInactiveStatus(""))
}

func TestValidateSyncPolicy(t *testing.T) {
	require.NoError(t, validateSyncPolicy(DefaultSyncPolicy()))

	require.Error(t, validateSyncPolicy(SyncPolicy{
		PurchasedStatuses:      []string{"completed"},
		UnlimitedDownloadCount: 999,
	}))
	require.Error(t, validateSyncPolicy(SyncPolicy{
		InactiveStatuses:       []string{"cancelled"},
		UnlimitedDownloadCount: 999,
	}))
	require.Error(t, validateSyncPolicy(SyncPolicy{
		InactiveStatuses:  []string{"cancelled"},
		PurchasedStatuses: []string{"completed"},
	}))
}

func TestStaticSyncPolicyHolder(t *testing.T) {
	holder := NewStaticSyncPolicyHolder(SyncPolicy{
		InactiveStatuses:       []string{"paused"},
		PurchasedStatuses:      []string{"completed"},
		UnlimitedDownloadCount: 10,
	})

	require.Equal(t, []string{"paused"}, holder.Get().InactiveStatuses)
	require.Equal(t, 10, holder.Get().UnlimitedDownloadCount)
}

package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SyncPolicy controls how commerce state maps to course access.
type SyncPolicy struct {
	// InactiveStatuses are subscription statuses that revoke access.
	InactiveStatuses []string `mapstructure:"inactiveStatuses"`
	// PurchasedStatuses are order statuses that count as a purchase.
	PurchasedStatuses []string `mapstructure:"purchasedStatuses"`
	// UnlimitedDownloadCount is stored when a product has no download limit.
	UnlimitedDownloadCount int `mapstructure:"unlimitedDownloadCount"`
}

func DefaultSyncPolicy() SyncPolicy {
	return SyncPolicy{
		InactiveStatuses:       []string{"on-hold", "cancelled", "expired"},
		PurchasedStatuses:      []string{"completed", "processing"},
		UnlimitedDownloadCount: 999,
	}
}

// IsInactiveStatus reports whether the subscription status revokes access.
func (p SyncPolicy) IsInactiveStatus(status string) bool {
	status = strings.ToLower(strings.TrimSpace(status))
	for _, s := range p.InactiveStatuses {
		if strings.EqualFold(s, status) {
			return true
		}
	}
	return false
}

type SyncPolicyHolder struct {
	current atomic.Value // holds SyncPolicy
}

func NewSyncPolicyHolder() (*SyncPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("sync")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/coursesync/config")
	v.AddConfigPath("/etc/coursesync")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COURSESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultSyncPolicy()
		v.SetDefault("sync.inactiveStatuses", defaults.InactiveStatuses)
		v.SetDefault("sync.purchasedStatuses", defaults.PurchasedStatuses)
		v.SetDefault("sync.unlimitedDownloadCount", defaults.UnlimitedDownloadCount)
	}

	var policy SyncPolicy
	if err := v.UnmarshalKey("sync", &policy); err != nil {
		return nil, err
	}
	if err := validateSyncPolicy(policy); err != nil {
		return nil, err
	}

	holder := &SyncPolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SyncPolicy
		if err := v.UnmarshalKey("sync", &updated); err != nil {
			log.Printf("[sync-policy] reload failed: %v", err)
			return
		}
		if err := validateSyncPolicy(updated); err != nil {
			log.Printf("[sync-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[sync-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticSyncPolicyHolder wraps a fixed policy without file watching.
func NewStaticSyncPolicyHolder(policy SyncPolicy) *SyncPolicyHolder {
	holder := &SyncPolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *SyncPolicyHolder) Get() SyncPolicy {
	return h.current.Load().(SyncPolicy)
}

func validateSyncPolicy(policy SyncPolicy) error {
	if len(policy.InactiveStatuses) == 0 {
		return errors.New("sync.inactiveStatuses cannot be empty")
	}
	if len(policy.PurchasedStatuses) == 0 {
		return errors.New("sync.purchasedStatuses cannot be empty")
	}
	if policy.UnlimitedDownloadCount <= 0 {
		return errors.New("sync.unlimitedDownloadCount must be positive")
	}
	return nil
}

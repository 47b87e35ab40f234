package dispatch

import (
	"sync"

	"github.com/vpbank/intellivue-gateway/models"
)

// SubscriptionTable is the subscription-id -> Subscription registry, written
// by the HTTP control surface and read by the dispatcher. One sync.RWMutex
// guards it, per DESIGN.md's Open Question resolution — the dispatcher's read
// of ForMonitor always observes a consistent snapshot, satisfying "a
// poll reply MUST see a consistent snapshot of subscriptions".
type SubscriptionTable struct {
	mu   sync.RWMutex
	byID map[string]models.Subscription
}

// NewSubscriptionTable returns an empty, ready-to-use table.
func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{byID: make(map[string]models.Subscription)}
}

// Add registers a new subscription.
func (t *SubscriptionTable) Add(sub models.Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byID[sub.ID] = sub
}

// Remove deletes a subscription by id. ok is false if it did not exist.
func (t *SubscriptionTable) Remove(id string) (ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byID[id]; !exists {
		return false
	}
	delete(t.byID, id)
	return true
}

// ForMonitor returns a snapshot of every subscription bound to mac.
func (t *SubscriptionTable) ForMonitor(mac string) []models.Subscription {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []models.Subscription
	for _, sub := range t.byID {
		if sub.MonitorMAC == mac {
			out = append(out, sub)
		}
	}
	return out
}

// Get returns a single subscription by id.
func (t *SubscriptionTable) Get(id string) (models.Subscription, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sub, ok := t.byID[id]
	return sub, ok
}

package session

import (
	"sync"
	"time"

	"github.com/vpbank/intellivue-gateway/models"
)

// MonitorTable is the MAC -> Monitor registry shared between the engine (which
// creates and refreshes entries on every beacon) and the HTTP control surface
// (which reads it for GET /api/monitors). One sync.RWMutex guards the whole
// map, per DESIGN.md's Open Question resolution: the corpus' own
// ConnectionPool and Scheduler each guard their shared state with exactly one
// lock rather than routing mutation through a single owning goroutine.
type MonitorTable struct {
	mu       sync.RWMutex
	monitors map[string]models.Monitor
}

// NewMonitorTable returns an empty, ready-to-use table.
func NewMonitorTable() *MonitorTable {
	return &MonitorTable{monitors: make(map[string]models.Monitor)}
}

// Upsert creates the Monitor record on first sight of mac, or refreshes Host,
// Port, and LastSeen on every subsequent call. It is never deleted here; the
// HTTP surface owns eviction.
func (t *MonitorTable) Upsert(mac, host string, port int, seenAt time.Time) models.Monitor {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := models.Monitor{MAC: mac, Host: host, Port: port, LastSeen: seenAt}
	t.monitors[mac] = m
	return m
}

// Get returns the Monitor for mac, if known.
func (t *MonitorTable) Get(mac string) (models.Monitor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.monitors[mac]
	return m, ok
}

// List returns a snapshot of every known Monitor, in no particular order.
func (t *MonitorTable) List() []models.Monitor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Monitor, 0, len(t.monitors))
	for _, m := range t.monitors {
		out = append(out, m)
	}
	return out
}

// Evict removes a Monitor record. Neither the engine nor the HTTP routes call
// it.
func (t *MonitorTable) Evict(mac string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.monitors, mac)
}

// IPIndex maps a monitor's current IP address to its canonical MAC, since the
// IP is a routing handle that may change across associations.
type IPIndex struct {
	mu   sync.RWMutex
	byIP map[string]string
}

// NewIPIndex returns an empty, ready-to-use index.
func NewIPIndex() *IPIndex {
	return &IPIndex{byIP: make(map[string]string)}
}

// Set records that ip currently belongs to mac.
func (idx *IPIndex) Set(ip, mac string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.byIP[ip] = mac
}

// MAC resolves ip to a MAC address, if known.
func (idx *IPIndex) MAC(ip string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	mac, ok := idx.byIP[ip]
	return mac, ok
}

package session

import (
	"testing"
	"time"
)

func TestMonitorTableUpsertAndGet(t *testing.T) {
	tbl := NewMonitorTable()
	now := time.Now()

	m := tbl.Upsert("06:08:06:08:00:01", "10.0.0.5", 24105, now)
	if m.MAC != "06:08:06:08:00:01" || m.Host != "10.0.0.5" || m.Port != 24105 {
		t.Fatalf("Upsert returned %+v, want matching fields", m)
	}

	got, ok := tbl.Get("06:08:06:08:00:01")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.Host != "10.0.0.5" {
		t.Errorf("Get().Host = %q, want %q", got.Host, "10.0.0.5")
	}

	later := now.Add(time.Minute)
	tbl.Upsert("06:08:06:08:00:01", "10.0.0.6", 24105, later)
	got, _ = tbl.Get("06:08:06:08:00:01")
	if got.Host != "10.0.0.6" {
		t.Errorf("second Upsert did not refresh Host: got %q", got.Host)
	}
	if !got.LastSeen.Equal(later) {
		t.Errorf("second Upsert did not refresh LastSeen: got %v, want %v", got.LastSeen, later)
	}
}

func TestMonitorTableListAndEvict(t *testing.T) {
	tbl := NewMonitorTable()
	tbl.Upsert("mac-1", "10.0.0.1", 24105, time.Now())
	tbl.Upsert("mac-2", "10.0.0.2", 24105, time.Now())

	if len(tbl.List()) != 2 {
		t.Fatalf("List() has %d entries, want 2", len(tbl.List()))
	}

	tbl.Evict("mac-1")
	if _, ok := tbl.Get("mac-1"); ok {
		t.Fatal("Get(mac-1) after Evict ok = true, want false")
	}
	if len(tbl.List()) != 1 {
		t.Fatalf("List() after Evict has %d entries, want 1", len(tbl.List()))
	}
}

func TestIPIndex(t *testing.T) {
	idx := NewIPIndex()
	if _, ok := idx.MAC("10.0.0.1"); ok {
		t.Fatal("MAC() on empty index ok = true, want false")
	}

	idx.Set("10.0.0.1", "mac-1")
	mac, ok := idx.MAC("10.0.0.1")
	if !ok || mac != "mac-1" {
		t.Fatalf("MAC(10.0.0.1) = (%q, %v), want (mac-1, true)", mac, ok)
	}

	idx.Set("10.0.0.1", "mac-2")
	mac, _ = idx.MAC("10.0.0.1")
	if mac != "mac-2" {
		t.Errorf("Set did not overwrite existing entry: got %q, want mac-2", mac)
	}
}

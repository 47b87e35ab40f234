// Package models defines the core data structures shared across all layers of
// the gateway. These types represent the canonical in-memory form of monitor
// and subscription state and the observation payloads built from it; every
// other package depends on this package and nothing here depends on any
// other internal package.
package models

import "time"

// Monitor is a patient monitor known to the gateway, created on first receipt
// of a discovery beacon and refreshed on every subsequent one. MAC is the
// canonical identity; Host may change across beacons without creating a new
// Monitor.
type Monitor struct {
	MAC      string    `json:"mac_address"`
	Host     string    `json:"host"`
	Port     int       `json:"port"`
	LastSeen time.Time `json:"last_seen"`
}

package models

import "time"

// Observation is one decoded numeric measurement, ready for the webhook
// payload: symbolic physiological and unit identifiers (resolved via the
// nomenclature registry where known, otherwise the numeric code as a
// string), the float value, and the set of active state-flag names.
type Observation struct {
	PhysioID string   `json:"physio_id"`
	State    []string `json:"state"`
	UnitCode string   `json:"unit_code"`
	Value    float64  `json:"value"`
}

// WebhookPayload is the JSON body POSTed to every subscription whose
// MonitorMAC matches MonitorID. Built only when at least one valid
// observation was extracted from a poll reply.
type WebhookPayload struct {
	MonitorID    string        `json:"monitor_id"`
	Datetime     time.Time     `json:"datetime"`
	Observations []Observation `json:"observations"`
}

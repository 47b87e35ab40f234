// Package config provides YAML configuration loading for the gateway.
//
// It reads two inputs, each driven by an environment variable with a
// documented default:
//
//	GATEWAY_SETTINGS_FILE_PATH       → Settings
//	GATEWAY_SUBSCRIPTIONS_FILE_PATH  → []SubscriptionSeed (optional bootstrap)
package config

import (
	"time"
)

// Settings is the fully-resolved gateway configuration: network surface,
// poll cadence, HTTP dispatch behavior, and the optional pcap sink.
type Settings struct {
	DiscoveryAddr       string // default "0.0.0.0:24005"
	ProtocolAddr        string // default "0.0.0.0:24105"
	PollInterval        time.Duration
	HTTPAddr            string // default ":8080"
	WebhookTimeout      time.Duration
	WebhookWorkers      int
	PCAPPath            string // empty disables capture
	PCAPMaxBytes        int64
	PCAPMaxBackups      int
}

// rawSettings is the intermediate YAML-decoded form of Settings. Durations
// are plain integers in the file (the poll interval in seconds, the webhook
// timeout in milliseconds), the same plain-int-then-resolve idiom the
// original SNMP collector's device config used for its poll interval and
// timeout fields.
type rawSettings struct {
	DiscoveryAddr       string `yaml:"discovery_addr"`
	ProtocolAddr        string `yaml:"protocol_addr"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	HTTPAddr            string `yaml:"http_addr"`
	WebhookTimeoutMs    int    `yaml:"webhook_timeout_ms"`
	WebhookWorkers      int    `yaml:"webhook_workers"`
	PCAPPath            string `yaml:"pcap_path"`
	PCAPMaxBytes        int64  `yaml:"pcap_max_bytes"`
	PCAPMaxBackups      int    `yaml:"pcap_max_backups"`
}

// resolveSettings fills zero fields of a decoded rawSettings with hard-coded
// fallbacks, mirroring config.resolveDevice.
func resolveSettings(r rawSettings) Settings {
	discoveryAddr := r.DiscoveryAddr
	if discoveryAddr == "" {
		discoveryAddr = "0.0.0.0:24005"
	}
	protocolAddr := r.ProtocolAddr
	if protocolAddr == "" {
		protocolAddr = "0.0.0.0:24105"
	}
	pollInterval := time.Duration(r.PollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	httpAddr := r.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	webhookTimeout := time.Duration(r.WebhookTimeoutMs) * time.Millisecond
	if webhookTimeout <= 0 {
		webhookTimeout = 5 * time.Second
	}
	webhookWorkers := r.WebhookWorkers
	if webhookWorkers <= 0 {
		webhookWorkers = 16
	}
	pcapMaxBytes := r.PCAPMaxBytes
	if pcapMaxBytes <= 0 {
		pcapMaxBytes = 64 << 20
	}
	pcapMaxBackups := r.PCAPMaxBackups
	if pcapMaxBackups <= 0 {
		pcapMaxBackups = 3
	}

	return Settings{
		DiscoveryAddr:  discoveryAddr,
		ProtocolAddr:   protocolAddr,
		PollInterval:   pollInterval,
		HTTPAddr:       httpAddr,
		WebhookTimeout: webhookTimeout,
		WebhookWorkers: webhookWorkers,
		PCAPPath:       r.PCAPPath,
		PCAPMaxBytes:   pcapMaxBytes,
		PCAPMaxBackups: pcapMaxBackups,
	}
}

// SubscriptionSeed is one bootstrap binding from the subscriptions file.
type SubscriptionSeed struct {
	ID  string `yaml:"id"`
	MAC string `yaml:"mac"`
	URL string `yaml:"url"`
}

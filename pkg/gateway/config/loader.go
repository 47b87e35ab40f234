package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Paths holds the file locations for gateway configuration, each overridable
// by environment variable.
type Paths struct {
	Settings      string // GATEWAY_SETTINGS_FILE_PATH
	Subscriptions string // GATEWAY_SUBSCRIPTIONS_FILE_PATH (optional)
}

// PathsFromEnv reads each path from its environment variable, falling back
// to the documented default when unset or empty.
func PathsFromEnv() Paths {
	return Paths{
		Settings:      envOr("GATEWAY_SETTINGS_FILE_PATH", "/etc/gateway/settings.yaml"),
		Subscriptions: envOr("GATEWAY_SUBSCRIPTIONS_FILE_PATH", "/etc/gateway/subscriptions.yaml"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadedConfig is the fully parsed gateway configuration.
type LoadedConfig struct {
	Settings      Settings
	Subscriptions []SubscriptionSeed
}

// Load reads the settings file (required) and the subscriptions bootstrap
// file (optional — its absence is not an error, matching the teacher's
// "missing directory means that section is empty" convention).
func Load(paths Paths, logger *slog.Logger) (*LoadedConfig, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	var raw rawSettings
	if err := decodeFile(paths.Settings, &raw); err != nil {
		return nil, fmt.Errorf("config: load settings %q: %w", paths.Settings, err)
	}
	settings := resolveSettings(raw)

	var seeds []SubscriptionSeed
	if err := decodeFile(paths.Subscriptions, &seeds); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("config: no subscriptions bootstrap file", "path", paths.Subscriptions)
		} else {
			return nil, fmt.Errorf("config: load subscriptions %q: %w", paths.Subscriptions, err)
		}
	}

	return &LoadedConfig{Settings: settings, Subscriptions: seeds}, nil
}

func decodeFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(false)
	return dec.Decode(out)
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

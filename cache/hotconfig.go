package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// tunable is the subset of engine knobs that can change at runtime.
// Capacity and policy changes require reconstruction and are not applied.
type tunable interface {
	setExpireAfterWrite(time.Duration)
	setExpireAfterAccess(time.Duration)
	setRefreshAfterWrite(time.Duration)
	setMaintenanceInterval(time.Duration)
}

// HotConfigOptions configures file-watched runtime tuning.
type HotConfigOptions struct {
	// ConfigPath is the configuration file to watch. Argus understands
	// JSON, YAML, TOML, HCL, INI, and Properties.
	ConfigPath string

	// PollInterval is how often the file is checked for changes.
	// Default 1s, minimum 100ms.
	PollInterval time.Duration

	// OnReload is called after a change was applied. Optional; must be
	// fast and non-blocking.
	OnReload func(applied map[string]time.Duration)

	// Logger for reload events. Defaults to NoopLogger.
	Logger Logger
}

// HotConfig watches a configuration file and retunes a running cache's
// durations when it changes.
//
// Recognized keys (all duration strings, under a top-level "cache" map):
//
//	cache:
//	  expire_after_write: "1h"
//	  expire_after_access: "15m"
//	  refresh_after_write: "30m"
//	  maintenance_interval: "60s"
type HotConfig struct {
	target  tunable
	watcher *argus.Watcher
	log     Logger

	mu       sync.Mutex
	onReload func(map[string]time.Duration)
}

// NewHotConfig attaches a file watcher to the given cache. The cache must
// have been built by New in this package.
func NewHotConfig[K comparable, V any](c Cache[K, V], opts HotConfigOptions) (*HotConfig, error) {
	t, ok := c.(tunable)
	if !ok {
		return nil, fmt.Errorf("cache: hot config requires an engine built by cache.New")
	}
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("cache: hot config requires config_path")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger{}
	}

	hc := &HotConfig{
		target:   t,
		log:      opts.Logger,
		onReload: opts.OnReload,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(
		opts.ConfigPath,
		hc.handleChange,
		argus.Config{PollInterval: opts.PollInterval},
	)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher
	return hc, nil
}

// Start begins watching. Safe to call on an already running watcher.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// handleChange is invoked by argus with the parsed file contents.
func (hc *HotConfig) handleChange(data map[string]interface{}) {
	section, ok := data["cache"].(map[string]interface{})
	if !ok {
		return
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()

	applied := make(map[string]time.Duration)
	apply := func(key string, set func(time.Duration)) {
		raw, ok := section[key]
		if !ok {
			return
		}
		d, ok := parseDuration(raw)
		if !ok {
			hc.log.Warn("hot config: ignoring unparsable duration", "key", key, "value", raw)
			return
		}
		set(d)
		applied[key] = d
	}

	apply("expire_after_write", hc.target.setExpireAfterWrite)
	apply("expire_after_access", hc.target.setExpireAfterAccess)
	apply("refresh_after_write", hc.target.setRefreshAfterWrite)
	apply("maintenance_interval", hc.target.setMaintenanceInterval)

	if len(applied) > 0 {
		hc.log.Info("hot config: applied", "keys", len(applied))
		if hc.onReload != nil {
			hc.onReload(applied)
		}
	}
}

// parseDuration accepts duration strings ("1h", "200ms") and non-negative
// numeric seconds (YAML/JSON numbers arrive as float64).
func parseDuration(v interface{}) (time.Duration, bool) {
	switch x := v.(type) {
	case string:
		d, err := time.ParseDuration(x)
		if err != nil || d < 0 {
			return 0, false
		}
		return d, true
	case int:
		if x < 0 {
			return 0, false
		}
		return time.Duration(x) * time.Second, true
	case float64:
		if x < 0 {
			return 0, false
		}
		return time.Duration(x * float64(time.Second)), true
	}
	return 0, false
}

package logging

import "time"

const (
	defaultQueueDepth  = 512
	defaultDropWarnGap = 5 * time.Second
	defaultFlushPeriod = 2 * time.Second
)

// Config controls the router. Zero values fall back to defaults at
// construction, so a partially filled Config is safe to pass.
type Config struct {
	EnabledSinks     []string
	BufferSize       int
	MinimumSeverity  Severity
	Fields           map[string]any
	JSON             JSONConfig
	DropWarnInterval time.Duration
}

// JSONConfig configures the file-backed JSON sink.
type JSONConfig struct {
	FilePath      string
	FlushInterval time.Duration
}

func DefaultConfig() Config {
	cfg := Config{
		EnabledSinks:     []string{"console"},
		BufferSize:       defaultQueueDepth,
		MinimumSeverity:  SeverityInfo,
		DropWarnInterval: defaultDropWarnGap,
	}
	cfg.JSON.FlushInterval = defaultFlushPeriod
	return cfg
}

// HasSink reports whether name appears in EnabledSinks.
func (c Config) HasSink(name string) bool {
	for _, enabled := range c.EnabledSinks {
		if enabled == name {
			return true
		}
	}
	return false
}

// CloneFields copies the static field set so the router can hold it
// without sharing the caller's map.
func (c Config) CloneFields() map[string]any {
	if len(c.Fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(c.Fields))
	for k, v := range c.Fields {
		out[k] = v
	}
	return out
}

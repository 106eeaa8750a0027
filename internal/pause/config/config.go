// Package config holds tunables for the pause engine and resumption
// scheduler. Values here are behavioral knobs; connection settings live in
// internal/platform/config.
package config

import "time"

// EngineConfig bounds the engine's external calls so the per-client lock is
// never held indefinitely.
type EngineConfig struct {
	// RunnerTimeout bounds each Flow Runner pause/resume/list call.
	RunnerTimeout time.Duration
	// NotifierTimeout bounds the notification dispatch. Notification is
	// best-effort; a slow notifier must not extend the safety path.
	NotifierTimeout time.Duration
}

// SchedulerConfig drives the automatic resumption loop.
type SchedulerConfig struct {
	// PollInterval is how often due timers are checked. It is also the
	// scheduling error bound on automatic resumption.
	PollInterval time.Duration
	// MaxResumeAttempts caps Flow Runner retries when a timer fires.
	MaxResumeAttempts int
	// RetryBaseDelay is the first backoff step; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// Config aggregates all pause feature tunables.
type Config struct {
	Engine    EngineConfig
	Scheduler SchedulerConfig
	// AuditInboxSize is the buffered channel capacity for async audit events.
	AuditInboxSize int
}

// DefaultConfig returns production defaults. Tests shrink the intervals.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			RunnerTimeout:   5 * time.Second,
			NotifierTimeout: 10 * time.Second,
		},
		Scheduler: SchedulerConfig{
			PollInterval:      30 * time.Second,
			MaxResumeAttempts: 5,
			RetryBaseDelay:    time.Second,
		},
		AuditInboxSize: 1024,
	}
}

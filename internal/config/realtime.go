package config

import "fmt"

// RealtimeConfig holds realtime broadcaster configuration.
type RealtimeConfig struct {
	// SubscriberBuffer is the per-subscriber outbound event buffer size.
	// When the buffer is full the oldest event is dropped, never blocking
	// the publisher.
	SubscriberBuffer int
}

// LoadRealtimeConfigFromEnv loads realtime configuration from environment variables.
func LoadRealtimeConfigFromEnv() RealtimeConfig {
	return RealtimeConfig{
		SubscriberBuffer: GetEnvInt("REALTIME_SUBSCRIBER_BUFFER", 16),
	}
}

// Validate validates realtime configuration.
func (c RealtimeConfig) Validate() error {
	if c.SubscriberBuffer <= 0 {
		return fmt.Errorf("SubscriberBuffer must be greater than 0")
	}
	return nil
}

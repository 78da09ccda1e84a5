package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL              = "https://api.upbit.com"
	DefaultWSURL                = "wss://api.upbit.com/websocket/v1"
	DefaultAPITimeout           = 10 * time.Second
	DefaultMaxRetries           = 3
	DefaultRetryDelay           = 5 * time.Second
	DefaultTokenRefreshInterval = 24 * time.Hour
	DefaultDBPort               = 5432
	DefaultDBSSLMode            = "prefer"
	DefaultMaxConns             = 10
	DefaultMinConns             = 2
	DefaultConnectRetryWait     = 5 * time.Second
	DefaultReadRetryWait        = 1 * time.Second
	DefaultQueueSize            = 1024
	DefaultPingTimeout          = 60 * time.Second
	DefaultWriteTimeout         = 5 * time.Second
)

func (c *Config) applyDefaults() {
	if c.Upbit.RestURL == "" {
		c.Upbit.RestURL = DefaultRestURL
	}
	if c.Upbit.WSURL == "" {
		c.Upbit.WSURL = DefaultWSURL
	}
	if c.Upbit.Timeout == 0 {
		c.Upbit.Timeout = DefaultAPITimeout
	}
	if c.Upbit.MaxRetries == 0 {
		c.Upbit.MaxRetries = DefaultMaxRetries
	}
	if c.Upbit.RetryDelay == 0 {
		c.Upbit.RetryDelay = DefaultRetryDelay
	}
	if c.Upbit.TokenRefreshInterval == 0 {
		c.Upbit.TokenRefreshInterval = DefaultTokenRefreshInterval
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if c.Stream.ConnectRetryWait == 0 {
		c.Stream.ConnectRetryWait = DefaultConnectRetryWait
	}
	if c.Stream.ReadRetryWait == 0 {
		c.Stream.ReadRetryWait = DefaultReadRetryWait
	}
	if c.Stream.QueueSize == 0 {
		c.Stream.QueueSize = DefaultQueueSize
	}
	if c.Stream.PingTimeout == 0 {
		c.Stream.PingTimeout = DefaultPingTimeout
	}
	if c.Stream.WriteTimeout == 0 {
		c.Stream.WriteTimeout = DefaultWriteTimeout
	}
}

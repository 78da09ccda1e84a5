package config

import "time"

// Config is the root configuration for the trading client.
type Config struct {
	Upbit    UpbitConfig  `yaml:"upbit"`
	Database DBConfig     `yaml:"database"`
	Stream   StreamConfig `yaml:"stream"`
}

// UpbitConfig holds exchange API settings.
type UpbitConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	RestURL   string `yaml:"rest_url"`
	WSURL     string `yaml:"ws_url"`

	Timeout    time.Duration `yaml:"timeout"`     // REST request timeout
	MaxRetries int           `yaml:"max_retries"` // REST retry attempts
	RetryDelay time.Duration `yaml:"retry_delay"` // Fixed delay between REST retries

	// TokenRefreshInterval is the lifetime of minted websocket auth tokens.
	TokenRefreshInterval time.Duration `yaml:"token_refresh_interval"`
}

// DBConfig holds the PostgreSQL connection for tokens and trade records.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// StreamConfig holds streaming pipeline settings.
type StreamConfig struct {
	ConnectRetryWait time.Duration `yaml:"connect_retry_wait"` // Delay after a failed connect
	ReadRetryWait    time.Duration `yaml:"read_retry_wait"`    // Delay after a transport error
	QueueSize        int           `yaml:"queue_size"`         // Initial message queue capacity
	PingTimeout      time.Duration `yaml:"ping_timeout"`       // Max silence before the socket is stale
	WriteTimeout     time.Duration `yaml:"write_timeout"`      // Write deadline for outbound frames
}

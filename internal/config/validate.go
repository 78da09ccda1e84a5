package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Upbit.AccessKey == "" {
		return errors.New("upbit.access_key is required")
	}
	if c.Upbit.SecretKey == "" {
		return errors.New("upbit.secret_key is required")
	}
	if c.Upbit.MaxRetries < 0 {
		return errors.New("upbit.max_retries must be >= 0")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Stream.QueueSize < 1 {
		return errors.New("stream.queue_size must be >= 1")
	}
	if c.Stream.ConnectRetryWait <= 0 {
		return errors.New("stream.connect_retry_wait must be positive")
	}
	if c.Stream.ReadRetryWait <= 0 {
		return errors.New("stream.read_retry_wait must be positive")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

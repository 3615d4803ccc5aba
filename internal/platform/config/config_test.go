package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestLoad() {
	s.Run("defaults produce a memory-backed config", func() {
		cfg, err := Load(viper.New(), "")
		s.Require().NoError(err)
		s.Equal(":8080", cfg.Server.Addr)
		s.Equal(BackendMemory, cfg.Storage.Backend)
		s.Equal(5*time.Second, cfg.Storage.TxTimeout)
		s.Equal(uint64(4), cfg.Bootstrap.RootCurve.BaseLength)
		s.Equal(uint64(222), cfg.Bootstrap.RootCurve.FeePercentage)
	})

	s.Run("file values override defaults", func() {
		path := filepath.Join(s.T().TempDir(), "zns.yaml")
		body := "server:\n  addr: \":9090\"\nstorage:\n  backend: postgres\n  tx_timeout: 2s\npostgres:\n  dsn: postgres://u:p@localhost/zns\n"
		s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))

		cfg, err := Load(viper.New(), path)
		s.Require().NoError(err)
		s.Equal(":9090", cfg.Server.Addr)
		s.Equal(BackendPostgres, cfg.Storage.Backend)
		s.Equal(2*time.Second, cfg.Storage.TxTimeout)
		s.Equal("postgres://u:p@localhost/zns", cfg.Postgres.DSN)
	})

	s.Run("environment overrides file and defaults", func() {
		s.T().Setenv("ZNS_LOG_LEVEL", "debug")
		cfg, err := Load(viper.New(), "")
		s.Require().NoError(err)
		s.Equal("debug", cfg.Log.Level)
	})

	s.Run("kafka brokers from the environment are trimmed and deduped", func() {
		s.T().Setenv("ZNS_KAFKA_BROKERS", " k1:9092,k2:9092,k1:9092")
		s.T().Setenv("ZNS_BOOTSTRAP_ADMIN", "0x00000000000000000000000000000000000000ad")
		cfg, err := Load(viper.New(), "")
		s.Require().NoError(err)
		s.Equal([]string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		s.Equal("0x00000000000000000000000000000000000000ad", cfg.Bootstrap.Admin)
	})

	s.Run("missing file is an error", func() {
		_, err := Load(viper.New(), filepath.Join(s.T().TempDir(), "absent.yaml"))
		s.Error(err)
	})
}

func (s *ConfigSuite) TestValidate() {
	base := func() Config {
		cfg, err := Load(viper.New(), "")
		s.Require().NoError(err)
		return cfg
	}

	s.Run("postgres backend requires dsn", func() {
		cfg := base()
		cfg.Storage.Backend = BackendPostgres
		s.ErrorContains(cfg.Validate(), "postgres.dsn")
	})

	s.Run("redis backend requires url", func() {
		cfg := base()
		cfg.Storage.Backend = BackendRedis
		s.ErrorContains(cfg.Validate(), "redis.url")
	})

	s.Run("unknown backend rejected", func() {
		cfg := base()
		cfg.Storage.Backend = "etcd"
		s.ErrorContains(cfg.Validate(), "unknown storage backend")
	})

	s.Run("distributed lock ttl must exceed tx timeout", func() {
		cfg := base()
		cfg.Storage.DistributedLock = true
		cfg.Redis.URL = "redis://localhost:6379"
		cfg.Redis.LockTTL = time.Second
		s.ErrorContains(cfg.Validate(), "lock_ttl")
	})

	s.Run("rate limit needs a positive window", func() {
		cfg := base()
		s.True(cfg.RateLimit.Enabled)
		cfg.RateLimit.Window = 0
		s.ErrorContains(cfg.Validate(), "rate_limit")
		cfg.RateLimit.Enabled = false
		s.NoError(cfg.Validate())
	})
}

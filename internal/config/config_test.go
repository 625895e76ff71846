package config

import (
	"testing"
	"time"

	"bidding-service/internal/domain/policy"
	"bidding-service/internal/domain/shared"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080", Host: "localhost"},
		Database: DatabaseConfig{Driver: DriverPostgres, URL: "postgres://localhost/bidding"},
		Redis:    RedisConfig{Addr: "localhost:6379", LockTTL: 10 * time.Second},
		Kafka:    KafkaConfig{Topic: "bidding.notifications"},
		Lifecycle: LifecycleConfig{
			SchedulerInterval: time.Second,
			NotifyWorkers:     4,
			NotifyCapacity:    100,
		},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(PolicyOverrides, "bidding.start=2")
	t.Setenv(KafkaBrokers, "kafka-1:9092, kafka-2:9092")

	cfg, err := LoadConfig()
	assert.NoError(t, err)

	check.Equal(t, "8080", cfg.Server.Port)
	check.Equal(t, DriverPostgres, cfg.Database.Driver)
	check.True(t, cfg.Database.Migrations)
	check.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	check.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	check.Equal(t, shared.RankAssistantManager, cfg.Policy[policy.BiddingStart])
	check.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "valid", mutate: func(c *Config) {}, ok: true},
		{name: "memory driver needs no url", mutate: func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMemory} }, ok: true},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "sqlite" }},
		{name: "missing url", mutate: func(c *Config) { c.Database.URL = "" }},
		{name: "missing redis", mutate: func(c *Config) { c.Redis.Addr = "" }},
		{name: "kafka without topic", mutate: func(c *Config) { c.Kafka = KafkaConfig{Brokers: []string{"k:9092"}} }},
		{name: "zero interval", mutate: func(c *Config) { c.Lifecycle.SchedulerInterval = 0 }},
		{name: "bad bootstrap admin", mutate: func(c *Config) { c.Lifecycle.BootstrapAdminID = "root" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.ok {
				check.NoError(t, err)
			} else {
				check.Error(t, err)
			}
		})
	}
}

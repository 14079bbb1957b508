package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsWaitlistSettings(t *testing.T) {
	t.Setenv("WAITLIST_STORE", StoreMemory)
	t.Setenv("WAITLIST_MAX_SIZE", "25")
	t.Setenv("WAITLIST_OFFER_TIMEOUT", "90s")
	t.Setenv("WAITLIST_REOFFER_AFTER_TIMEOUT", "false")
	t.Setenv("WAITLIST_HELD_EVENTS", "E1, ,https://events.example/?eventId=E2")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Waitlist.Store)
	assert.Equal(t, 25, cfg.Waitlist.MaxSize)
	assert.Equal(t, 90*time.Second, cfg.Waitlist.OfferTimeout)
	assert.False(t, cfg.Waitlist.ReofferAfterTimeout)
	assert.False(t, cfg.Waitlist.SkipWithoutCredential)
	assert.Equal(t, []string{"E1", "https://events.example/?eventId=E2"}, cfg.Waitlist.HeldEvents)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoad_MalformedValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("WAITLIST_STORE", StoreMemory)
	t.Setenv("WAITLIST_MAX_SIZE", "ten")
	t.Setenv("WAITLIST_RATE_LIMIT_COOLDOWN", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Waitlist.MaxSize)
	assert.Equal(t, 45*time.Second, cfg.Waitlist.RateLimitCooldown)
}

func validConfig() *Config {
	return &Config{
		Env:    "development",
		Server: ServerConfig{HTTPPort: 8080, GRpcPort: 50057},
		Waitlist: WaitlistConfig{
			Store:            StoreMemory,
			MaxSize:          10,
			SweepInterval:    5 * time.Second,
			SweepConcurrency: 4,
			OfferTimeout:     time.Minute,
		},
		OfferToken: OfferTokenConfig{Secret: "s3cret"},
	}
}

func TestValidate(t *testing.T) {
	tcs := map[string]struct {
		mutate  func(c *Config)
		wantErr bool
	}{
		"valid":         {mutate: func(c *Config) {}},
		"bad http port": {mutate: func(c *Config) { c.Server.HTTPPort = 70000 }, wantErr: true},
		"unknown store": {mutate: func(c *Config) { c.Waitlist.Store = "mongo" }, wantErr: true},
		"zero max size": {mutate: func(c *Config) { c.Waitlist.MaxSize = 0 }, wantErr: true},
		"no postgres url": {
			mutate:  func(c *Config) { c.Waitlist.Store = StorePostgres },
			wantErr: true,
		},
		"default secret in production": {
			mutate: func(c *Config) {
				c.Env = "production"
				c.OfferToken.Secret = "offer-token-secret"
			},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)

			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

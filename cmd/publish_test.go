package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/cevcharge/config"
	coremqtt "github.com/kilianp07/cevcharge/core/mqtt"
)

type fakePublisher struct{ disconnected int }

func (f *fakePublisher) PublishSchedule(context.Context, coremqtt.ScheduleOrder) (string, error) {
	return "cmd-1", nil
}

func (f *fakePublisher) Disconnect() { f.disconnected++ }

func useFakePublisher(t *testing.T) *fakePublisher {
	t.Helper()
	fp := &fakePublisher{}
	orig := newPublisher
	newPublisher = func(*config.Config) (schedulePublisher, error) { return fp, nil }
	t.Cleanup(func() { newPublisher = orig })
	return fp
}

func publishConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Dataset.Dir = t.TempDir()
	cfg.Store.Backend = "memory"
	cfg.MQTT.Broker = "tcp://127.0.0.1:1883"
	cfg.SetDefaults()
	return cfg
}

func TestPublishServiceDisconnectsOnSetupFailure(t *testing.T) {
	fp := useFakePublisher(t)
	cfg := publishConfig(t)
	cfg.Sentry.DSN = "not a dsn"

	svc, err := publishService(cfg, false)
	require.Error(t, err)
	assert.Nil(t, svc)
	assert.Equal(t, 1, fp.disconnected)
}

func TestPublishServiceKeepsPublisherConnected(t *testing.T) {
	fp := useFakePublisher(t)
	svc, err := publishService(publishConfig(t), false)
	require.NoError(t, err)
	assert.Equal(t, 0, fp.disconnected)

	require.NoError(t, svc.Close())
	assert.Equal(t, 1, fp.disconnected)
}

func TestPublishServiceDryRunSkipsBroker(t *testing.T) {
	fp := useFakePublisher(t)
	svc, err := publishService(publishConfig(t), true)
	require.NoError(t, err)
	require.NoError(t, svc.Close())
	assert.Equal(t, 0, fp.disconnected)
}

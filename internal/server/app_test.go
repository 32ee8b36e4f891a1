package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/idkeeper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageMode = "memory"
	c.SecretKey = "app-test"
	c.PasswordHashCost = 4
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.LogLevel = "error"
	return c
}

func TestNewApp_MemoryStorage(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.userService)
	assert.NotNil(t, app.registry)
}

func TestNewApp_InvalidSettings(t *testing.T) {
	c := memoryConfig()
	c.LogLevel = "shout"
	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)

	c = memoryConfig()
	c.SecretKey = ""
	_, err = NewApp(context.Background(), c)
	assert.Error(t, err)

	c = memoryConfig()
	c.StorageMode = "tape"
	_, err = NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

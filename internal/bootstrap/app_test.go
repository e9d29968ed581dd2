package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cyclecare/internal/infra/config"
	"github.com/yanqian/cyclecare/pkg/logger"
)

func TestClosersRunInReverseAndJoinErrors(t *testing.T) {
	var order []string
	c := NewClosers()
	c.Add("postgres", func() error { order = append(order, "postgres"); return nil })
	c.Add("valkey", func() error { order = append(order, "valkey"); return errors.New("boom") })

	err := c.Close(logger.Discard())
	require.EqualError(t, err, "boom")
	require.Equal(t, []string{"valkey", "postgres"}, order)

	require.NoError(t, c.Close(logger.Discard()))
	require.Len(t, order, 2)
}

func TestAppRunStopsOnContextCancel(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	closed := false
	closers := NewClosers()
	closers.Add("test", func() error { closed = true; return nil })

	app := NewApp(cfg, logger.Discard(), server, closers)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	require.True(t, closed)
}

package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServeStopsOnCancel(t *testing.T) {
	db := filepath.Join(t.TempDir(), "insight.db")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan cliResult, 1)
	go func() {
		done <- runCLIContext(t, ctx, "--db", db, "--log-format", "json", "serve", "--addr", "127.0.0.1:0")
	}()

	select {
	case res := <-done:
		assert.Equal(t, ExitSuccess, res.code, res.stdout+res.stderr)
		assert.Contains(t, res.stderr, `"msg":"starting server"`)
		assert.Contains(t, res.stderr, `"msg":"server stopped"`)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}

func TestServeBadAddress(t *testing.T) {
	db := filepath.Join(t.TempDir(), "insight.db")

	res := runCLI(t, "--db", db, "serve", "--addr", "not-an-address")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stdout, "listen on not-an-address")
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/testutil"
)

// cliResult captures one CLI invocation.
type cliResult struct {
	stdout string
	stderr string
	code   int
}

// runCLI runs the root command with a fixed query id.
func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	return runCLIContext(t, context.Background(), args...)
}

func runCLIContext(t *testing.T, ctx context.Context, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts := &RootOptions{IDGenerator: testutil.NewFixedIDGenerator("query-1")}
	code := execute(ctx, newRootCommand(opts), args, &stdout, &stderr)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

// decodeResponse parses a JSON-format CLI response.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// writeRecords writes records as a JSON array and returns the path.
func writeRecords(t *testing.T, dir, name string, records []ir.Record) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// writeFile writes content under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// seedCatalog creates a catalog holding a "rooms" dataset of n rooms and
// returns its path.
func seedCatalog(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "insight.db")
	records := writeRecords(t, dir, "rooms.json", testutil.Rooms(n))

	res := runCLI(t, "--db", db, "dataset", "add", "rooms", "rooms", records)
	require.Equal(t, ExitSuccess, res.code, "seed failed: %s %s", res.stdout, res.stderr)
	return db
}

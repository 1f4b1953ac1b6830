package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverScenarios(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(minimalScenario), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.yaml"), []byte(minimalScenario), 0644))

	paths, err := DiscoverScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, paths)
}

func TestDiscoverScenarios_Empty(t *testing.T) {
	dir := t.TempDir()

	_, err := DiscoverScenarios(dir)
	var noScenarios *NoScenariosError
	require.ErrorAs(t, err, &noScenarios)
	assert.Equal(t, dir, noScenarios.Dir)
}

func TestDiscoverScenarios_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.yaml")
	require.NoError(t, os.WriteFile(file, []byte(minimalScenario), 0644))

	_, err := DiscoverScenarios(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")

	_, err = DiscoverScenarios(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadScenarios_DuplicateNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.yaml"), []byte(minimalScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.yaml"), []byte(minimalScenario), 0644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario name "minimal" already used`)
}

func TestLoadScenarios_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: [\n"), 0644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

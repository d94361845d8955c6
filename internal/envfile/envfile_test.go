package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key) //nolint:errcheck
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	assert.NoError(t, Load("/nonexistent/.env"))
}

func TestLoad_SetsUnsetVars(t *testing.T) {
	path := writeEnv(t, t.TempDir(), ".env.local", "SHIPWRIGHT_TEST_A=hello\nSHIPWRIGHT_TEST_B=world\n")
	unset(t, "SHIPWRIGHT_TEST_A", "SHIPWRIGHT_TEST_B")

	require.NoError(t, Load(path))

	assert.Equal(t, "hello", os.Getenv("SHIPWRIGHT_TEST_A"))
	assert.Equal(t, "world", os.Getenv("SHIPWRIGHT_TEST_B"))
}

func TestLoad_DoesNotOverrideExisting(t *testing.T) {
	path := writeEnv(t, t.TempDir(), ".env", "SHIPWRIGHT_TEST_C=from_file\n")
	t.Setenv("SHIPWRIGHT_TEST_C", "from_env")

	require.NoError(t, Load(path))

	assert.Equal(t, "from_env", os.Getenv("SHIPWRIGHT_TEST_C"))
}

func TestLoad_CommentsQuotesAndExport(t *testing.T) {
	content := "# comment\n\nexport SHIPWRIGHT_TEST_D=\"quoted value\"\nSHIPWRIGHT_TEST_E='single'\n"
	path := writeEnv(t, t.TempDir(), ".env", content)
	unset(t, "SHIPWRIGHT_TEST_D", "SHIPWRIGHT_TEST_E")

	require.NoError(t, Load(path))

	assert.Equal(t, "quoted value", os.Getenv("SHIPWRIGHT_TEST_D"))
	assert.Equal(t, "single", os.Getenv("SHIPWRIGHT_TEST_E"))
}

func TestLoadAll_EarlierFileWins(t *testing.T) {
	dir := t.TempDir()
	local := writeEnv(t, dir, ".env.local", "SHIPWRIGHT_TEST_F=local\n")
	shared := writeEnv(t, dir, ".env", "SHIPWRIGHT_TEST_F=shared\nSHIPWRIGHT_TEST_G=shared\n")
	unset(t, "SHIPWRIGHT_TEST_F", "SHIPWRIGHT_TEST_G")

	require.NoError(t, LoadAll(local, shared, filepath.Join(dir, "missing")))

	assert.Equal(t, "local", os.Getenv("SHIPWRIGHT_TEST_F"))
	assert.Equal(t, "shared", os.Getenv("SHIPWRIGHT_TEST_G"))
}

func TestPaths(t *testing.T) {
	assert.Equal(t,
		[]string{filepath.Join("repo", ".env.local"), filepath.Join("repo", ".env"), filepath.Join("cfg", "env")},
		Paths("repo", "cfg"))
	assert.Len(t, Paths("repo", ""), 2)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("STACKS_TEST_KEY", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "STACKS_TEST_KEY", "default"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "STACKS_TEST_KEY", "default"))
	// Default when nothing else is set.
	assert.Equal(t, "default", getConfigValue("", "STACKS_TEST_UNSET", "default"))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment line\n\nSTACKS_ENVFILE_A=hello\nSTACKS_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Setenv("STACKS_ENVFILE_A", "")
	t.Setenv("STACKS_ENVFILE_B", "")
	os.Unsetenv("STACKS_ENVFILE_A")
	os.Unsetenv("STACKS_ENVFILE_B")

	require.NoError(t, loadEnvFile(envPath))

	assert.Equal(t, "hello", os.Getenv("STACKS_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("STACKS_ENVFILE_B"))
}

func TestLoadEnvFile_DoesNotOverrideRealEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STACKS_ENVFILE_C=from-file\n"), 0o600))

	t.Setenv("STACKS_ENVFILE_C", "from-real-env")

	require.NoError(t, loadEnvFile(envPath))

	assert.Equal(t, "from-real-env", os.Getenv("STACKS_ENVFILE_C"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("NOT_A_PAIR\n"), 0o600))

	err := loadEnvFile(envPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format at line 1")
}

func TestValidate(t *testing.T) {
	valid := &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/stacks"},
		Auth:   AuthConfig{LoginPassword: "secret"},
	}
	assert.NoError(t, valid.Validate())

	badEnv := *valid
	badEnv.App.Environment = "testing"
	assert.ErrorContains(t, badEnv.Validate(), "invalid environment")

	badLevel := *valid
	badLevel.Logger.Level = "verbose"
	assert.ErrorContains(t, badLevel.Validate(), "invalid log level")

	noPassword := *valid
	noPassword.Auth.LoginPassword = ""
	assert.ErrorContains(t, noPassword.Validate(), "login password")
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/already/absolute", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/already/absolute", got)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	got, err = expandPath("~/stacks-data", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "stacks-data"), got)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile — утилита записи временного файла конфигурации.
func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o600))
	return p
}

// chdir — смена текущего рабочего каталога с авто-возвратом.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// unsetenv — удаляет переменную до конца теста (значение восстановит t.Setenv).
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

const sampleYAML = `
env: "prod"
api:
  base_url: "https://accounts.example.com/api/v1"
  timeout: "3s"
  user_agent: "cli-test"
session:
  backend: "redis"
  path: "/tmp/cookies.json"
  redis_url: "redis://cache:6379/1"
  redis_prefix: "t:"
auth:
  refresh_on_expiry: false
`

const minimalYAML = `
env: "stage"
`

const brokenYAML = `
env: [unclosed
`

func TestLoad_WithExplicitPath_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, "https://accounts.example.com/api/v1", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "cli-test", cfg.API.UserAgent)
	require.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	require.Equal(t, "/tmp/cookies.json", cfg.Session.Path)
	require.Equal(t, "redis://cache:6379/1", cfg.Session.RedisURL)
	require.Equal(t, "t:", cfg.Session.RedisPrefix)
	require.False(t, cfg.Auth.RefreshOnExpiry)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "min.yaml", minimalYAML)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	require.Equal(t, "stage", cfg.Env)
	require.Equal(t, "http://localhost:8000/api/v1", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, SessionBackendFile, cfg.Session.Backend)
	require.True(t, cfg.Auth.RefreshOnExpiry)
}

func TestLoad_WithExplicitPath_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "broken.yaml", brokenYAML)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_UnknownBackend(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "bad.yaml", `
session:
  backend: "sqlite"
`)

	_, err := Load(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown session backend")
}

func TestLoad_WithCONFIG_PATH_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "from_env_path.yaml", minimalYAML)
	t.Setenv("CONFIG_PATH", cfgPath)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Env)
}

func TestLoad_WithLocalYAML_OK(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, ".", "local.yaml", sampleYAML)
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

// Явный путь важнее CONFIG_PATH и local.yaml.
func TestLoad_Priority_ExplicitWinsOverEnvAndLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	explicit := writeFile(t, dir, "explicit.yaml", `
env: "prod"
`)
	badFromEnv := writeFile(t, dir, "bad.yaml", brokenYAML)
	t.Setenv("CONFIG_PATH", badFromEnv)
	writeFile(t, ".", "local.yaml", `
env: "local"
`)

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Env)
}

func TestLoad_EnvOverlay_OverridesValuesFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "config.yaml", sampleYAML)

	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("SESSION_BACKEND", "file")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, SessionBackendFile, cfg.Session.Backend)
}

// .env подхватывается и работает как ENV.
func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")
	// t.Setenv регистрирует восстановление; godotenv не перетирает заданные значения,
	// поэтому саму переменную очищаем через os.Unsetenv.
	t.Setenv("API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	writeFile(t, ".", ".env", "API_BASE_URL=http://dotenv.local/api/v1\n")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://dotenv.local/api/v1", cfg.API.BaseURL)
	require.NoError(t, os.Unsetenv("API_BASE_URL"))
}

func TestSessionConfig_CookiePath(t *testing.T) {
	p, err := SessionConfig{Path: "/x/cookies.json"}.CookiePath()
	require.NoError(t, err)
	require.Equal(t, "/x/cookies.json", p)

	t.Setenv("XDG_CONFIG_HOME", "/home/u/.config")
	t.Setenv("HOME", "/home/u")
	p, err = SessionConfig{}.CookiePath()
	require.NoError(t, err)
	require.Equal(t, "cookies.json", filepath.Base(p))
	require.Equal(t, "account-client", filepath.Base(filepath.Dir(p)))
}

// Явный false в YAML переживает наложение ENV, когда переменная не задана.
func TestLoad_RefreshOnExpiry_FalseFromYAMLKept(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	unsetenv(t, "AUTH_REFRESH_ON_EXPIRY")
	cfgPath := writeFile(t, dir, "off.yaml", `
auth:
  refresh_on_expiry: false
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.False(t, cfg.Auth.RefreshOnExpiry)
}

func TestLoad_RefreshOnExpiry_EnvOnly(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("CONFIG_PATH", "")

	unsetenv(t, "AUTH_REFRESH_ON_EXPIRY")
	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.Auth.RefreshOnExpiry, "по умолчанию включено")

	t.Setenv("AUTH_REFRESH_ON_EXPIRY", "false")
	cfg, err = Load("")
	require.NoError(t, err)
	require.False(t, cfg.Auth.RefreshOnExpiry)
}

func TestLoad_RefreshOnExpiry_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeFile(t, dir, "off.yaml", `
auth:
  refresh_on_expiry: false
`)
	t.Setenv("AUTH_REFRESH_ON_EXPIRY", "true")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	require.True(t, cfg.Auth.RefreshOnExpiry)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stat failed")
}

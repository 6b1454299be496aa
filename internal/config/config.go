// config - источник загрузки конфигурации клиента.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// Перед чтением подхватывается ./.env (если есть): его значения попадают в окружение
// и дальше работают как обычные ENV-переменные.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
	Auth    AuthConfig    `yaml:"auth"`
}

// APIConfig — адрес и параметры вызовов user-account API.
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"   env:"API_BASE_URL"   env-default:"http://localhost:8000/api/v1"`
	Timeout   time.Duration `yaml:"timeout"    env:"API_TIMEOUT"    env-default:"10s"`
	UserAgent string        `yaml:"user_agent" env:"API_USER_AGENT" env-default:"account-client"`
}

// SessionConfig — где хранятся cookie accessToken/refreshToken.
type SessionConfig struct {
	Backend     string `yaml:"backend"      env:"SESSION_BACKEND"      env-default:"file"`
	Path        string `yaml:"path"         env:"SESSION_PATH"`
	RedisURL    string `yaml:"redis_url"    env:"SESSION_REDIS_URL"    env-default:"redis://localhost:6379/0"`
	RedisPrefix string `yaml:"redis_prefix" env:"SESSION_REDIS_PREFIX" env-default:"account:cookie:"`
}

// AuthConfig — поведение проверки доступа.
type AuthConfig struct {
	// RefreshOnExpiry — пробовать обменять refresh-токен, если access истёк.
	// Значение по умолчанию (true) выставляет defaults(): env-default для bool
	// перетёр бы явный false из YAML.
	RefreshOnExpiry bool `yaml:"refresh_on_expiry" env:"AUTH_REFRESH_ON_EXPIRY"`
}

// CookiePath возвращает путь файла сессии: из конфига или в каталоге пользователя.
func (s SessionConfig) CookiePath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config.CookiePath: %w", err)
	}

	return filepath.Join(dir, "account-client", "cookies.json"), nil
}

// defaults — значения, которые нельзя задать через env-default.
func defaults() Config {
	return Config{Auth: AuthConfig{RefreshOnExpiry: true}}
}

// Load читает конфигурацию из первого доступного источника.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := defaults()

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return validate(&cfg)
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return validate(&cfg)
}

// loadDotEnv подгружает .env, не перетирая уже заданные переменные.
// Отсутствие файла ошибкой не считается.
func loadDotEnv(p string) error {
	if err := godotenv.Load(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to read %s: %w", p, err)
	}

	return nil
}

func validate(cfg *Config) (*Config, error) {
	switch cfg.Session.Backend {
	case SessionBackendFile, SessionBackendRedis:
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api base_url is empty")
	}

	return cfg, nil
}

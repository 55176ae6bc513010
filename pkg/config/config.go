// Package config читает настройки из .env файлов и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"usercomments/pkg/storage"
)

// Config - настройки сервиса комментариев и экрана пользователя.
type Config struct {
	// Сервер
	Addr          string
	Storage       string // postgres или memory
	DatabaseURL   string
	DB            storage.DBConfig
	MigrationsDir string
	JWTSecret     string
	AccessLog     string

	// Клиент
	APIURL string
	Token  string
	Theme  string
}

// Load загружает переменные из файлов files (отсутствующие файлы пропускаются)
// и собирает Config. Уже заданные переменные окружения не перезаписываются.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("ошибка загрузки %s: %w", f, err)
		}
	}

	port, err := strconv.Atoi(env("DB_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("неверный DB_PORT: %w", err)
	}
	cfg := Config{
		Addr:        env("COMMAPP_ADDR", ":8082"),
		Storage:     env("COMMAPP_STORAGE", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DB: storage.DBConfig{
			Host:     env("DB_HOST", "localhost"),
			User:     env("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   env("DB_NAME", "comments"),
			Port:     port,
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		MigrationsDir: env("MIGRATIONS_DIR", "migrations"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AccessLog:     env("ACCESS_LOG", "access.log"),
		APIURL:        env("COMMENTS_API_URL", "http://localhost:8082"),
		Token:         os.Getenv("SESSION_TOKEN"),
		Theme:         env("THEME", "light"),
	}
	if cfg.Storage != "postgres" && cfg.Storage != "memory" {
		return Config{}, fmt.Errorf("неизвестное хранилище %q", cfg.Storage)
	}
	return cfg, nil
}

// ConnString - строка подключения к БД: DATABASE_URL или собранная из DB_*.
func (c Config) ConnString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DB.ConnString()
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

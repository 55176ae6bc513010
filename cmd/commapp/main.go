package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"usercomments/pkg/api"
	"usercomments/pkg/auth"
	"usercomments/pkg/config"
	"usercomments/pkg/storage"
	"usercomments/pkg/storage/memdb"
)

func main() {
	envFile := flag.String("env", ".env", "файл с переменными окружения")
	tokenFor := flag.String("token-for", "", "выпустить токен сессии для пользователя и выйти")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "срок действия токена")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("Не задан JWT_SECRET")
	}

	if *tokenFor != "" {
		token, err := auth.Issue(cfg.JWTSecret, *tokenFor, *tokenTTL)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(token)
		return
	}

	// Подключаемся к хранилищу
	var db storage.DBInterface
	switch cfg.Storage {
	case "memory":
		db = memdb.New()
	default:
		if err := storage.Migrate(cfg.ConnString(), cfg.MigrationsDir); err != nil {
			log.Fatalf("Ошибка миграции БД: %v", err)
		}
		pg, err := storage.New(cfg.ConnString())
		if err != nil {
			log.Fatal(err)
		}
		db = pg
	}
	defer db.Close()

	// Создаем новый API
	a, err := api.New(db, api.Options{Secret: cfg.JWTSecret, LogFile: cfg.AccessLog})
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	// Запуск HTTP сервера
	log.Printf("Сервер запущен на %s", cfg.Addr)
	err = http.ListenAndServe(cfg.Addr, a.Router())
	if err != nil {
		log.Fatalf("Ошибка при запуске сервера: %v", err)
	}
}

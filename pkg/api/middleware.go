package api

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"usercomments/pkg/auth"
)

// RequestIDKey - тип для ключа контекста
type RequestIDKey struct{}

// UserIDKey - ключ контекста для id авторизованного пользователя
type UserIDKey struct{}

// Создаём логгер для записи в stdout и, если задан путь, в файл.
func newLogger(path string) (*log.Logger, io.Closer, error) {
	if path == "" {
		return log.New(os.Stdout, "", log.LstdFlags), nil, nil
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия файла логов: %w", err)
	}
	multiWriter := io.MultiWriter(os.Stdout, logFile)
	return log.New(multiWriter, "", log.LstdFlags), logFile, nil
}

// Middleware для добавления request_id в контекст запроса и заголовок ответа
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("request_id")
		if requestID == "" {
			requestID = uuid.Must(uuid.NewV4()).String()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey{}, requestID)
		w.Header().Set("request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Middleware для журналирования запросов
func LoggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID, _ := r.Context().Value(RequestIDKey{}).(string)

			// Перехватываем http.ResponseWriter для записи кода ответа
			ww := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			logger.Printf("Request ID: %s, Method: %s, URL: %s, IP: %s, Status: %d, Duration: %v, Time: %s",
				requestID, r.Method, r.URL.Path, r.RemoteAddr, ww.statusCode, time.Since(start), start.Format(time.RFC3339))
		})
	}
}

// AuthMiddleware проверяет токен сессии из заголовка Authorization.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized, "требуется авторизация")
				return
			}
			userID, err := auth.Verify(secret, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "требуется авторизация")
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// responseWriter - обертка для ResponseWriter для захвата кода статуса
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает код статуса HTTP-ответа
func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.statusCode == 0 {
		rw.statusCode = statusCode
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write выставляет статус 200, если обработчик не вызвал WriteHeader.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

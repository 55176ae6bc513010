package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"usercomments/pkg/censor"
	"usercomments/pkg/models"
	"usercomments/pkg/storage"
)

// Options - настройки API.
type Options struct {
	// Секрет для проверки токенов сессии.
	Secret string

	// Файл журнала запросов. Пустая строка - только stdout.
	LogFile string

	// Logger заменяет журнал по умолчанию, LogFile тогда не используется.
	Logger *log.Logger

	// Цензор для текста комментариев, по умолчанию censor.Default.
	Censor *censor.Censor
}

// API структура.
type API struct {
	db       storage.DBInterface
	r        *chi.Mux
	logger   *log.Logger
	logFile  io.Closer
	secret   string
	censor   *censor.Censor
	validate *validator.Validate
}

// Конструктор API.
func New(db storage.DBInterface, opts Options) (*API, error) {
	a := API{
		db:       db,
		r:        chi.NewRouter(),
		logger:   opts.Logger,
		secret:   opts.Secret,
		censor:   opts.Censor,
		validate: validator.New(),
	}
	if a.logger == nil {
		logger, closer, err := newLogger(opts.LogFile)
		if err != nil {
			return nil, err
		}
		a.logger, a.logFile = logger, closer
	}
	if a.censor == nil {
		a.censor = censor.Default
	}
	a.endpoints()
	return &a, nil
}

// Router возвращает маршрутизатор для использования
// в качестве аргумента HTTP-сервера.
func (api *API) Router() *chi.Mux {
	return api.r
}

// Close закрывает файл журнала, если он был открыт.
func (api *API) Close() error {
	if api.logFile == nil {
		return nil
	}
	return api.logFile.Close()
}

// Регистрация методов API в маршрутизаторе запросов.
func (api *API) endpoints() {
	api.r.Use(RequestIDMiddleware)
	api.r.Use(LoggingMiddleware(api.logger))
	api.r.Use(middleware.Recoverer)

	api.r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(api.secret))
		r.Get("/user-comments", api.userCommentsHandler)
		r.Put("/comment/{id}", api.updateCommentHandler)
		r.Delete("/comment/{id}", api.deleteCommentHandler)
	})
}

// Комментарии текущего пользователя.
func (api *API) userCommentsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value(UserIDKey{}).(string)
	comments, err := api.db.UserComments(r.Context(), userID)
	if err != nil {
		api.logger.Printf("user-comments: %v", err)
		writeError(w, http.StatusInternalServerError, "не удалось получить комментарии")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// Обновление текста комментария автором.
func (api *API) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !api.authorize(w, r, id) {
		return
	}

	var req models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "неверный формат запроса")
		return
	}
	if err := api.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "некорректный текст комментария")
		return
	}
	if err := api.censor.Check(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := api.db.UpdateComment(r.Context(), id, req.Content)
	if err != nil {
		api.storageError(w, err, "не удалось обновить комментарий")
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// Удаление комментария автором.
func (api *API) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !api.authorize(w, r, id) {
		return
	}
	if err := api.db.DeleteComment(r.Context(), id); err != nil {
		api.storageError(w, err, "не удалось удалить комментарий")
		return
	}
	writeJSON(w, http.StatusOK, models.DeleteResponse{OK: true})
}

// authorize проверяет, что комментарий существует и принадлежит пользователю.
func (api *API) authorize(w http.ResponseWriter, r *http.Request, id string) bool {
	comment, err := api.db.CommentByID(r.Context(), id)
	if err != nil {
		api.storageError(w, err, "не удалось получить комментарий")
		return false
	}
	userID, _ := r.Context().Value(UserIDKey{}).(string)
	if comment.PostedBy.ID != userID {
		writeError(w, http.StatusForbidden, "комментарий принадлежит другому пользователю")
		return false
	}
	return true
}

func (api *API) storageError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	api.logger.Printf("%s: %v", msg, err)
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

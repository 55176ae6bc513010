// Package client - HTTP-клиент API комментариев.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofrs/uuid/v5"

	"usercomments/pkg/models"
)

// StatusError - ответ API с кодом, отличным от 200.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("непредвиденный статус ответа: %d", e.Code)
	}
	return fmt.Sprintf("непредвиденный статус ответа: %d: %s", e.Code, e.Message)
}

// Client обращается к API комментариев.
type Client struct {
	baseURL   string
	http      *http.Client
	requestID func() string
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задаёт HTTP-клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRequestID задаёт генератор request_id.
func WithRequestID(gen func() string) Option {
	return func(c *Client) { c.requestID = gen }
}

// Конструктор клиента. baseURL - адрес API без завершающего слэша.
func New(baseURL string, opts ...Option) *Client {
	c := Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		requestID: newRequestID,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

func newRequestID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// UserComments возвращает комментарии текущего пользователя.
func (c *Client) UserComments(ctx context.Context, token string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, http.MethodGet, "/user-comments", token, nil, &comments); err != nil {
		return nil, fmt.Errorf("не удалось получить комментарии: %w", err)
	}
	return comments, nil
}

// UpdateComment меняет текст комментария и возвращает его новую версию.
func (c *Client) UpdateComment(ctx context.Context, token, id, content string) (models.Comment, error) {
	var comment models.Comment
	body := models.UpdateRequest{Content: content}
	if err := c.do(ctx, http.MethodPut, commentPath(id), token, body, &comment); err != nil {
		return models.Comment{}, fmt.Errorf("не удалось обновить комментарий: %w", err)
	}
	return comment, nil
}

// DeleteComment удаляет комментарий и возвращает поле ok ответа.
func (c *Client) DeleteComment(ctx context.Context, token, id string) (bool, error) {
	var resp models.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, commentPath(id), token, nil, &resp); err != nil {
		return false, fmt.Errorf("не удалось удалить комментарий: %w", err)
	}
	return resp.OK, nil
}

func commentPath(id string) string {
	return "/comment/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("request_id", c.requestID())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка при декодировании ответа: %w", err)
	}
	return nil
}

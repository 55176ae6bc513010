// Package memdb - хранилище комментариев в памяти.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gofrs/uuid/v5"

	"usercomments/pkg/models"
	"usercomments/pkg/storage"
)

// DB хранит комментарии в памяти.
type DB struct {
	mu       sync.RWMutex
	comments map[string]models.Comment
}

var _ storage.DBInterface = (*DB)(nil)

// Конструктор хранилища. Начальные комментарии сохраняются как есть.
func New(seed ...models.Comment) *DB {
	db := DB{comments: make(map[string]models.Comment)}
	for _, c := range seed {
		db.comments[c.ID] = c
	}
	return &db
}

func (db *DB) AddComment(ctx context.Context, comment models.Comment) (string, error) {
	if comment.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", fmt.Errorf("ошибка генерации id: %w", err)
		}
		comment.ID = id.String()
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.comments[comment.ID]; ok {
		return "", fmt.Errorf("комментарий %s уже существует", comment.ID)
	}
	db.comments[comment.ID] = comment
	return comment.ID, nil
}

func (db *DB) UserComments(ctx context.Context, userID string) ([]models.Comment, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	comments := []models.Comment{}
	for _, c := range db.comments {
		if c.PostedBy.ID == userID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (db *DB) CommentByID(ctx context.Context, id string) (models.Comment, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.comments[id]
	if !ok {
		return models.Comment{}, storage.ErrNotFound
	}
	return c, nil
}

func (db *DB) UpdateComment(ctx context.Context, id, content string) (models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.comments[id]
	if !ok {
		return models.Comment{}, storage.ErrNotFound
	}
	c.Content = content
	db.comments[id] = c
	return c, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.comments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(db.comments, id)
	return nil
}

func (db *DB) Close() {}

package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"usercomments/pkg/models"
)

// ErrNotFound - комментарий не найден.
var ErrNotFound = errors.New("комментарий не найден")

// Интерфейс для работы с базой данных
type DBInterface interface {
	AddComment(ctx context.Context, comment models.Comment) (string, error)
	UserComments(ctx context.Context, userID string) ([]models.Comment, error)
	CommentByID(ctx context.Context, id string) (models.Comment, error)
	UpdateComment(ctx context.Context, id, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	Close()
}

// Конфигурация БД
type DBConfig struct {
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

// ConnString собирает строку подключения в формате URL.
func (c DBConfig) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host,
		Path:   "/" + c.DBName,
	}
	if c.Port != 0 {
		u.Host = c.Host + ":" + strconv.Itoa(c.Port)
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// База данных
type DB struct {
	pool *pgxpool.Pool
}

// Конструктор для инициализации соединения с БД
func New(connstr string) (*DB, error) {
	if connstr == "" {
		return nil, errors.New("не указано подключение к БД")
	}
	pool, err := pgxpool.Connect(context.Background(), connstr)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}
	db := DB{
		pool: pool,
	}

	return &db, nil
}

const selectComments = `SELECT c.id, c.content, c.created_at,
		p.id, p.slug, p.title,
		u.id, u.name
	FROM comments c
	JOIN posts p ON p.id = c.post_id
	JOIN users u ON u.id = c.posted_by`

func scanComment(row pgx.Row) (models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.Content, &c.CreatedAt,
		&c.Post.ID, &c.Post.Slug, &c.Post.Title,
		&c.PostedBy.ID, &c.PostedBy.Name)
	return c, err
}

// Добавление комментария. Идентификатор генерируется, если не задан.
func (db *DB) AddComment(ctx context.Context, comment models.Comment) (string, error) {
	if comment.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return "", fmt.Errorf("ошибка генерации id: %w", err)
		}
		comment.ID = id.String()
	}
	var id string
	query := `INSERT INTO comments (id, content, post_id, posted_by, created_at)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := db.pool.QueryRow(ctx, query, comment.ID, comment.Content, comment.Post.ID,
		comment.PostedBy.ID, comment.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("ошибка добавления комментария: %w", err)
	}
	return id, nil
}

// Комментарии пользователя, новые первыми
func (db *DB) UserComments(ctx context.Context, userID string) ([]models.Comment, error) {
	rows, err := db.pool.Query(ctx, selectComments+` WHERE c.posted_by = $1 ORDER BY c.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения комментариев: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка обработки комментария: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка получения комментариев: %w", err)
	}
	return comments, nil
}

func (db *DB) CommentByID(ctx context.Context, id string) (models.Comment, error) {
	c, err := scanComment(db.pool.QueryRow(ctx, selectComments+` WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("ошибка получения комментария: %w", err)
	}
	return c, nil
}

// Обновление текста комментария
func (db *DB) UpdateComment(ctx context.Context, id, content string) (models.Comment, error) {
	tag, err := db.pool.Exec(ctx, `UPDATE comments SET content = $2 WHERE id = $1`, id, content)
	if err != nil {
		return models.Comment{}, fmt.Errorf("ошибка обновления комментария: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Comment{}, ErrNotFound
	}
	return db.CommentByID(ctx, id)
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления комментария: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Закрытие соединения с БД
func (db *DB) Close() {
	db.pool.Close()
}

package models

import "time"

// PostRef - денормализованная ссылка на пост, к которому оставлен комментарий.
type PostRef struct {
	ID    string `json:"_id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// UserRef - автор комментария.
type UserRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Comment - комментарий пользователя в том виде, в котором его отдаёт API.
type Comment struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Post      PostRef   `json:"postId"`
	PostedBy  UserRef   `json:"postedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateRequest - тело запроса PUT /comment/{id}.
type UpdateRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// DeleteResponse - ответ на DELETE /comment/{id}.
type DeleteResponse struct {
	OK bool `json:"ok"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

package censor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrForbidden возвращается, если текст содержит запрещённое слово.
var ErrForbidden = errors.New("комментарий содержит недопустимые слова")

// Список запрещенных слов по умолчанию
var defaultWords = []string{"qwerty", "йцукен", "zxvbnm"}

// Default - цензор со стандартным списком слов.
var Default = New(defaultWords...)

// Censor проверяет текст комментария на наличие запрещенных слов.
type Censor struct {
	words []string
}

// Конструктор цензора. Слова сравниваются без учёта регистра.
func New(words ...string) *Censor {
	c := Censor{}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			c.words = append(c.words, w)
		}
	}
	return &c
}

// Check возвращает ErrForbidden с найденным словом или nil.
func (c *Censor) Check(text string) error {
	lower := strings.ToLower(text)
	for _, word := range c.words {
		if strings.Contains(lower, word) {
			return fmt.Errorf("%w: %s", ErrForbidden, word)
		}
	}
	return nil
}

package view

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"usercomments/pkg/models"
)

// Theme - цветовая схема экрана.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Формат даты "L LT": 05/01/2024 3:04 PM
const dateLayout = "01/02/2006 3:04 PM"

// Коды ANSI для текста и фона.
const (
	ansiReset   = "\x1b[0m"
	ansiDark    = "\x1b[97;40m"
	ansiLight   = "\x1b[30;107m"
	ansiDimDark = "\x1b[90;40m"
)

// ParseTheme возвращает Dark для "dark" и Light для остальных значений.
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(Dark)) {
		return Dark
	}
	return Light
}

func (t Theme) text() string {
	if t == Dark {
		return ansiDark
	}
	return ansiLight
}

func (t Theme) muted() string {
	if t == Dark {
		return ansiDimDark
	}
	return ansiLight
}

// PostLink - ссылка на комментарий внутри его поста.
func PostLink(c models.Comment) string {
	return "/pages/posts/" + url.PathEscape(c.Post.Slug) + "#" + c.ID
}

// Render выводит экран: заголовок с числом комментариев, строку поиска,
// отфильтрованный список и, если открыта, форму редактирования.
func (v *CommentListView) Render(w io.Writer) error {
	s := v.Snapshot()
	filtered := Filter(s.Comments, s.Keyword)
	text, muted := v.theme.text(), v.theme.muted()

	var b strings.Builder
	fmt.Fprintf(&b, "%s%d Comments%s\n\n", text, len(s.Comments), ansiReset)
	fmt.Fprintf(&b, "%sSearch: %s%s\n\n", muted, s.Keyword, ansiReset)
	for i, c := range filtered {
		fmt.Fprintf(&b, "%s%d. %s%s\n", text, i+1, c.Content, ansiReset)
		fmt.Fprintf(&b, "%s   On %s | %s | %s%s\n", muted,
			c.Post.Title, c.PostedBy.Name, c.CreatedAt.Format(dateLayout), ansiReset)
		fmt.Fprintf(&b, "%s   view %s  edit  delete%s\n", muted, PostLink(c), ansiReset)
	}
	if s.ModalOpen {
		fmt.Fprintf(&b, "\n%s[Update comment]%s\n%s\n", text, ansiReset, s.EditBuffer)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

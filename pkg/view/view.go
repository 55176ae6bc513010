// Package view реализует экран управления комментариями пользователя:
// список с поиском, редактирование в модальной форме и удаление с подтверждением.
//
// Локальное состояние обновляется оптимистично после успешного ответа API,
// без повторной загрузки списка. Ошибки пишутся в журнал, уведомления
// получает только успешный исход операции.
package view

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"usercomments/pkg/models"
)

const (
	confirmDelete = "Are you sure you want to delete?"
	msgDeleted    = "Comment deleted successfully"
	msgUpdated    = "Comment updated"
)

var (
	// ErrNoSelection - SubmitEdit вызван без выбранного комментария.
	ErrNoSelection = errors.New("комментарий для редактирования не выбран")
	// ErrNoSession - нет токена сессии, запрос не отправлялся.
	ErrNoSession = errors.New("нет токена сессии")
	// ErrDeclined - пользователь отказался от удаления.
	ErrDeclined = errors.New("удаление отменено")
	// ErrNotOK - сервер ответил ok:false на удаление.
	ErrNotOK = errors.New("сервер не подтвердил удаление")
	// ErrNotInList - отредактированного комментария уже нет в списке.
	ErrNotInList = errors.New("комментарий отсутствует в списке")
)

// CommentService - удалённый API комментариев.
type CommentService interface {
	UserComments(ctx context.Context, token string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, token, id, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, token, id string) (bool, error)
}

// Notifier показывает пользователю уведомления.
type Notifier interface {
	Success(message string)
}

// Confirmer запрашивает у пользователя подтверждение.
type Confirmer interface {
	Confirm(prompt string) bool
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Success(message string) { f(message) }

// ConfirmerFunc позволяет использовать функцию как Confirmer.
type ConfirmerFunc func(prompt string) bool

func (f ConfirmerFunc) Confirm(prompt string) bool { return f(prompt) }

// Options - зависимости экрана.
type Options struct {
	Token     string
	Theme     Theme
	Notifier  Notifier
	Confirmer Confirmer

	// Logger - журнал ошибок, по умолчанию log.Default().
	Logger *log.Logger
}

// CommentListView - модель экрана комментариев пользователя.
type CommentListView struct {
	svc       CommentService
	theme     Theme
	notifier  Notifier
	confirmer Confirmer
	logger    *log.Logger

	mu         sync.Mutex
	token      string
	comments   []models.Comment
	keyword    string
	selected   *models.Comment
	editBuffer string
	modalOpen  bool
	loading    bool
	page       int
	total      int
}

// Конструктор экрана. Список не загружается, пока не вызван LoadComments или SetToken.
func New(svc CommentService, opts Options) *CommentListView {
	v := CommentListView{
		svc:       svc,
		theme:     opts.Theme,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		logger:    opts.Logger,
		token:     opts.Token,
		page:      1,
	}
	if v.logger == nil {
		v.logger = log.Default()
	}
	if v.notifier == nil {
		v.notifier = NotifierFunc(func(string) {})
	}
	if v.confirmer == nil {
		v.confirmer = ConfirmerFunc(func(string) bool { return false })
	}
	return &v
}

// LoadComments загружает комментарии пользователя и заменяет ими список.
// При ошибке список не меняется.
func (v *CommentListView) LoadComments(ctx context.Context) error {
	v.mu.Lock()
	token := v.token
	v.mu.Unlock()
	if token == "" {
		return ErrNoSession
	}

	comments, err := v.svc.UserComments(ctx, token)
	if err != nil {
		v.logger.Println(err)
		return err
	}

	v.mu.Lock()
	v.comments = comments
	v.mu.Unlock()
	return nil
}

// SetToken сохраняет токен сессии и загружает список, если получен новый токен.
func (v *CommentListView) SetToken(ctx context.Context, token string) error {
	v.mu.Lock()
	changed := token != v.token
	v.token = token
	v.mu.Unlock()
	if !changed || token == "" {
		return nil
	}
	return v.LoadComments(ctx)
}

// SetPage меняет текущую страницу. Список перезагружается при смене страницы,
// кроме возврата на первую; сам запрос страницу не учитывает.
func (v *CommentListView) SetPage(ctx context.Context, page int) error {
	v.mu.Lock()
	changed := page != v.page
	v.page = page
	token := v.token
	v.mu.Unlock()
	if !changed || page == 1 || token == "" {
		return nil
	}
	return v.LoadComments(ctx)
}

// SetKeyword задаёт строку поиска.
func (v *CommentListView) SetKeyword(keyword string) {
	v.mu.Lock()
	v.keyword = strings.ToLower(keyword)
	v.mu.Unlock()
}

// Filtered возвращает комментарии, подходящие под строку поиска.
func (v *CommentListView) Filtered() []models.Comment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Filter(v.comments, v.keyword)
}

// Filter возвращает комментарии, текст которых содержит keyword без учёта регистра.
// Пустой keyword оставляет все комментарии. Исходный срез не меняется.
func Filter(comments []models.Comment, keyword string) []models.Comment {
	keyword = strings.ToLower(keyword)
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if strings.Contains(strings.ToLower(c.Content), keyword) {
			out = append(out, c)
		}
	}
	return out
}

// DeleteComment удаляет комментарий после подтверждения пользователя.
func (v *CommentListView) DeleteComment(ctx context.Context, c models.Comment) error {
	if !v.confirmer.Confirm(confirmDelete) {
		return ErrDeclined
	}
	v.mu.Lock()
	token := v.token
	v.mu.Unlock()

	ok, err := v.svc.DeleteComment(ctx, token, c.ID)
	if err == nil && !ok {
		err = ErrNotOK
	}
	if err != nil {
		v.logger.Println(err)
		return err
	}

	v.mu.Lock()
	v.comments = without(v.comments, c.ID)
	v.total--
	v.mu.Unlock()
	v.notifier.Success(msgDeleted)
	return nil
}

// OpenEditor открывает модальную форму для комментария c.
func (v *CommentListView) OpenEditor(c models.Comment) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = &c
	v.editBuffer = c.Content
	v.modalOpen = true
}

// SetDraft обновляет текст в форме редактирования.
func (v *CommentListView) SetDraft(content string) {
	v.mu.Lock()
	v.editBuffer = content
	v.mu.Unlock()
}

// CloseEditor закрывает форму без сохранения. Выбранный комментарий остаётся.
func (v *CommentListView) CloseEditor() {
	v.mu.Lock()
	v.modalOpen = false
	v.mu.Unlock()
}

// SubmitEdit отправляет черновик из формы. Форма закрывается в любом случае,
// флаг loading сбрасывается только при успехе.
func (v *CommentListView) SubmitEdit(ctx context.Context) error {
	v.mu.Lock()
	if v.selected == nil {
		v.mu.Unlock()
		return ErrNoSelection
	}
	id, content, token := v.selected.ID, v.editBuffer, v.token
	v.loading = true
	v.mu.Unlock()

	updated, err := v.svc.UpdateComment(ctx, token, id, content)
	if err != nil {
		v.logger.Println(err)
		v.mu.Lock()
		v.modalOpen = false
		v.mu.Unlock()
		return err
	}

	v.mu.Lock()
	comments, found := withContent(v.comments, id, updated.Content)
	v.comments = comments
	v.modalOpen = false
	v.loading = false
	v.selected = nil
	v.mu.Unlock()
	if !found {
		v.logger.Println(ErrNotInList, id)
		return ErrNotInList
	}
	v.notifier.Success(msgUpdated)
	return nil
}

func without(comments []models.Comment, id string) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// withContent возвращает копию списка с новым текстом комментария id
// и признак того, что комментарий найден.
func withContent(comments []models.Comment, id, content string) ([]models.Comment, bool) {
	out := make([]models.Comment, len(comments))
	copy(out, comments)
	for i := range out {
		if out[i].ID == id {
			out[i].Content = content
			return out, true
		}
	}
	return out, false
}

// State - снимок состояния экрана.
type State struct {
	Comments   []models.Comment
	Keyword    string
	Selected   *models.Comment
	EditBuffer string
	ModalOpen  bool
	Loading    bool
	Page       int
	Total      int
}

// Snapshot возвращает копию текущего состояния.
func (v *CommentListView) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := State{
		Comments:   append([]models.Comment(nil), v.comments...),
		Keyword:    v.keyword,
		EditBuffer: v.editBuffer,
		ModalOpen:  v.modalOpen,
		Loading:    v.loading,
		Page:       v.page,
		Total:      v.total,
	}
	if v.selected != nil {
		sel := *v.selected
		s.Selected = &sel
	}
	return s
}

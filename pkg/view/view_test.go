package view

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"usercomments/pkg/models"
)

// fakeService - поддельный API комментариев.
type fakeService struct {
	mu         sync.Mutex
	comments   []models.Comment
	listErr    error
	listCalls  int
	updateResp models.Comment
	updateErr  error
	updates    []string
	deleteOK   bool
	deleteErr  error
	deletes    []string
}

func (f *fakeService) UserComments(ctx context.Context, token string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Comment(nil), f.comments...), nil
}

func (f *fakeService) UpdateComment(ctx context.Context, token, id, content string) (models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id+"="+content)
	return f.updateResp, f.updateErr
}

func (f *fakeService) DeleteComment(ctx context.Context, token, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteOK, f.deleteErr
}

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) Success(message string) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
}

func sample() []models.Comment {
	return []models.Comment{
		{ID: "c1", Content: "old", Post: models.PostRef{Slug: "first", Title: "First"}},
		{ID: "c2", Content: "Hello world", Post: models.PostRef{Slug: "second", Title: "Second"}},
		{ID: "c3", Content: "Goodbye"},
	}
}

func newTestView(t *testing.T, svc *fakeService, confirm bool) (*CommentListView, *recorder) {
	t.Helper()
	rec := &recorder{}
	v := New(svc, Options{
		Token:     "tok",
		Notifier:  rec,
		Confirmer: ConfirmerFunc(func(string) bool { return confirm }),
		Logger:    log.New(io.Discard, "", 0),
	})
	if err := v.LoadComments(context.Background()); err != nil {
		t.Fatal(err)
	}
	return v, rec
}

func ids(comments []models.Comment) string {
	var out []string
	for _, c := range comments {
		out = append(out, c.ID)
	}
	return strings.Join(out, ",")
}

func TestFilter(t *testing.T) {
	list := sample()
	if got := Filter(list, ""); ids(got) != ids(list) {
		t.Errorf(`Filter(L, "") = %s, want %s`, ids(got), ids(list))
	}

	for _, k := range []string{"o", "OLD", "world", "zzz", "bye"} {
		got := Filter(list, k)
		for _, c := range got {
			if !strings.Contains(strings.ToLower(c.Content), strings.ToLower(k)) {
				t.Errorf("Filter(L, %q) содержит %q", k, c.Content)
			}
		}
		if len(got) > len(list) {
			t.Errorf("Filter(L, %q) длиннее исходного списка", k)
		}
	}

	hello := []models.Comment{{ID: "1", Content: "Hello world"}, {ID: "2", Content: "Goodbye"}}
	if got := Filter(hello, "hello"); ids(got) != "1" {
		t.Errorf(`Filter(hello) = %s, want 1`, ids(got))
	}
}

func TestFilter_DoesNotAlias(t *testing.T) {
	list := sample()
	got := Filter(list, "")
	got[0].Content = "changed"
	if list[0].Content != "old" {
		t.Error("Filter вернул срез, разделяющий память с исходным")
	}
}

func TestCommentListView_Filtered(t *testing.T) {
	v, _ := newTestView(t, &fakeService{comments: sample()}, true)
	v.SetKeyword("HELLO")
	if s := v.Snapshot(); s.Keyword != "hello" {
		t.Errorf("keyword = %q, want hello", s.Keyword)
	}
	if got := ids(v.Filtered()); got != "c2" {
		t.Errorf("Filtered() = %s, want c2", got)
	}
	v.SetKeyword("")
	if got := ids(v.Filtered()); got != "c1,c2,c3" {
		t.Errorf("Filtered() = %s, want all", got)
	}
}

func TestCommentListView_DeleteConfirmed(t *testing.T) {
	svc := &fakeService{comments: sample(), deleteOK: true}
	v, rec := newTestView(t, svc, true)

	if err := v.DeleteComment(context.Background(), sample()[1]); err != nil {
		t.Fatal(err)
	}
	s := v.Snapshot()
	if ids(s.Comments) != "c1,c3" {
		t.Errorf("comments = %s, want c1,c3", ids(s.Comments))
	}
	if s.Total != -1 {
		t.Errorf("total = %d, want -1", s.Total)
	}
	if len(rec.messages) != 1 || rec.messages[0] != msgDeleted {
		t.Errorf("уведомления = %v", rec.messages)
	}
}

func TestCommentListView_DeleteDeclined(t *testing.T) {
	svc := &fakeService{comments: sample(), deleteOK: true}
	v, rec := newTestView(t, svc, false)

	if err := v.DeleteComment(context.Background(), sample()[0]); !errors.Is(err, ErrDeclined) {
		t.Errorf("DeleteComment() = %v, want ErrDeclined", err)
	}
	if len(svc.deletes) != 0 {
		t.Errorf("запросы на удаление: %v, want none", svc.deletes)
	}
	if got := ids(v.Snapshot().Comments); got != "c1,c2,c3" {
		t.Errorf("comments = %s", got)
	}
	if len(rec.messages) != 0 {
		t.Errorf("уведомления = %v, want none", rec.messages)
	}
}

func TestCommentListView_DeleteFailure(t *testing.T) {
	tests := []struct {
		name string
		svc  *fakeService
	}{
		{name: "ok false", svc: &fakeService{comments: sample(), deleteOK: false}},
		{name: "ошибка сети", svc: &fakeService{comments: sample(), deleteErr: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, rec := newTestView(t, tt.svc, true)
			if err := v.DeleteComment(context.Background(), sample()[0]); err == nil {
				t.Error("ожидалась ошибка")
			}
			s := v.Snapshot()
			if ids(s.Comments) != "c1,c2,c3" || s.Total != 0 {
				t.Errorf("состояние изменилось: %s total=%d", ids(s.Comments), s.Total)
			}
			if len(rec.messages) != 0 {
				t.Errorf("уведомления = %v, want none", rec.messages)
			}
		})
	}
}

func TestCommentListView_Edit(t *testing.T) {
	svc := &fakeService{comments: sample(), updateResp: models.Comment{ID: "c1", Content: "new"}}
	v, rec := newTestView(t, svc, true)
	before := v.Snapshot().Comments

	v.OpenEditor(before[0])
	s := v.Snapshot()
	if !s.ModalOpen || s.EditBuffer != "old" || s.Selected == nil || s.Selected.ID != "c1" {
		t.Fatalf("форма не открыта: %+v", s)
	}

	v.SetDraft("new")
	if err := v.SubmitEdit(context.Background()); err != nil {
		t.Fatal(err)
	}

	s = v.Snapshot()
	if s.Comments[0].Content != "new" {
		t.Errorf("c1 = %q, want new", s.Comments[0].Content)
	}
	for i := 1; i < len(s.Comments); i++ {
		if s.Comments[i] != before[i] {
			t.Errorf("комментарий %s изменился: %+v", s.Comments[i].ID, s.Comments[i])
		}
	}
	if s.ModalOpen || s.Selected != nil || s.Loading {
		t.Errorf("форма не закрыта: %+v", s)
	}
	if before[0].Content != "old" {
		t.Error("предыдущий снимок списка изменён на месте")
	}
	if len(svc.updates) != 1 || svc.updates[0] != "c1=new" {
		t.Errorf("запросы = %v", svc.updates)
	}
	if len(rec.messages) != 1 || rec.messages[0] != msgUpdated {
		t.Errorf("уведомления = %v", rec.messages)
	}
}

func TestCommentListView_EditUsesServerContent(t *testing.T) {
	svc := &fakeService{comments: sample(), updateResp: models.Comment{ID: "c1", Content: "trimmed"}}
	v, _ := newTestView(t, svc, true)
	v.OpenEditor(sample()[0])
	v.SetDraft("  trimmed  ")
	if err := v.SubmitEdit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := v.Snapshot().Comments[0].Content; got != "trimmed" {
		t.Errorf("c1 = %q, want trimmed", got)
	}
}

func TestCommentListView_EditFailure(t *testing.T) {
	svc := &fakeService{comments: sample(), updateErr: errors.New("boom")}
	v, rec := newTestView(t, svc, true)
	v.OpenEditor(sample()[0])
	v.SetDraft("new")

	if err := v.SubmitEdit(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	s := v.Snapshot()
	if s.ModalOpen {
		t.Error("форма должна закрыться и при ошибке")
	}
	if !s.Loading {
		t.Error("loading сбрасывается только при успехе")
	}
	if s.Comments[0].Content != "old" {
		t.Errorf("c1 = %q, want old", s.Comments[0].Content)
	}
	if len(rec.messages) != 0 {
		t.Errorf("уведомления = %v, want none", rec.messages)
	}
}

func TestCommentListView_EditAfterDelete(t *testing.T) {
	svc := &fakeService{comments: sample(), deleteOK: true, updateResp: models.Comment{ID: "c1", Content: "new"}}
	v, rec := newTestView(t, svc, true)
	v.OpenEditor(sample()[0])
	v.SetDraft("new")
	if err := v.DeleteComment(context.Background(), sample()[0]); err != nil {
		t.Fatal(err)
	}

	if err := v.SubmitEdit(context.Background()); !errors.Is(err, ErrNotInList) {
		t.Fatalf("SubmitEdit() = %v, want ErrNotInList", err)
	}
	s := v.Snapshot()
	if ids(s.Comments) != "c2,c3" {
		t.Errorf("comments = %s, want c2,c3", ids(s.Comments))
	}
	if s.ModalOpen || s.Selected != nil || s.Loading {
		t.Errorf("форма не закрыта: %+v", s)
	}
	if len(rec.messages) != 1 || rec.messages[0] != msgDeleted {
		t.Errorf("уведомления = %v, want только %q", rec.messages, msgDeleted)
	}
}

func TestCommentListView_SubmitWithoutSelection(t *testing.T) {
	svc := &fakeService{comments: sample()}
	v, _ := newTestView(t, svc, true)
	if err := v.SubmitEdit(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Errorf("SubmitEdit() = %v, want ErrNoSelection", err)
	}
	if len(svc.updates) != 0 {
		t.Errorf("запросы = %v, want none", svc.updates)
	}
}

func TestCommentListView_CloseEditorKeepsSelection(t *testing.T) {
	v, _ := newTestView(t, &fakeService{comments: sample()}, true)
	v.OpenEditor(sample()[0])
	v.CloseEditor()
	s := v.Snapshot()
	if s.ModalOpen || s.Selected == nil {
		t.Errorf("state = %+v", s)
	}
}

func TestCommentListView_LoadFailure(t *testing.T) {
	var logBuf bytes.Buffer
	svc := &fakeService{listErr: errors.New("network down")}
	v := New(svc, Options{Token: "tok", Logger: log.New(&logBuf, "", 0)})

	if err := v.LoadComments(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if n := len(v.Snapshot().Comments); n != 0 {
		t.Errorf("comments = %d, want 0", n)
	}
	if !strings.Contains(logBuf.String(), "network down") {
		t.Errorf("ошибка не записана в журнал: %q", logBuf.String())
	}

	svc.listErr = nil
	svc.comments = sample()
	if err := v.LoadComments(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc.listErr = errors.New("again")
	v.LoadComments(context.Background())
	if got := ids(v.Snapshot().Comments); got != "c1,c2,c3" {
		t.Errorf("предыдущий список потерян: %s", got)
	}
}

func TestCommentListView_Triggers(t *testing.T) {
	ctx := context.Background()
	svc := &fakeService{comments: sample()}
	v := New(svc, Options{Logger: log.New(io.Discard, "", 0)})

	if err := v.LoadComments(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("LoadComments() без токена = %v, want ErrNoSession", err)
	}
	v.SetPage(ctx, 2)
	if svc.listCalls != 0 {
		t.Fatalf("запросов без токена: %d", svc.listCalls)
	}

	v.SetToken(ctx, "tok")
	if svc.listCalls != 1 {
		t.Fatalf("после получения токена запросов: %d, want 1", svc.listCalls)
	}
	v.SetToken(ctx, "tok")
	if svc.listCalls != 1 {
		t.Errorf("тот же токен вызвал загрузку: %d", svc.listCalls)
	}

	v.SetPage(ctx, 3)
	if svc.listCalls != 2 {
		t.Errorf("смена страницы: запросов %d, want 2", svc.listCalls)
	}
	v.SetPage(ctx, 3)
	v.SetPage(ctx, 1)
	if svc.listCalls != 2 {
		t.Errorf("страница 1 или та же страница вызвала загрузку: %d", svc.listCalls)
	}
	if s := v.Snapshot(); s.Page != 1 {
		t.Errorf("page = %d, want 1", s.Page)
	}
}

func TestCommentListView_ConcurrentDeletes(t *testing.T) {
	svc := &fakeService{comments: sample(), deleteOK: true}
	v, _ := newTestView(t, svc, true)

	var wg sync.WaitGroup
	for _, c := range sample() {
		wg.Add(1)
		go func(c models.Comment) {
			defer wg.Done()
			v.DeleteComment(context.Background(), c)
		}(c)
	}
	wg.Wait()
	s := v.Snapshot()
	if len(s.Comments) != 0 || s.Total != -3 {
		t.Errorf("comments = %s total = %d", ids(s.Comments), s.Total)
	}
}

func TestPostLink(t *testing.T) {
	c := models.Comment{ID: "c1", Post: models.PostRef{Slug: "hello-go"}}
	if got := PostLink(c); got != "/pages/posts/hello-go#c1" {
		t.Errorf("PostLink() = %q", got)
	}
}

func TestRender(t *testing.T) {
	created := time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC)
	svc := &fakeService{comments: []models.Comment{
		{ID: "c1", Content: "Hello world", CreatedAt: created,
			Post: models.PostRef{Slug: "go", Title: "Go"}, PostedBy: models.UserRef{Name: "Alice"}},
		{ID: "c2", Content: "Goodbye"},
	}}
	v := New(svc, Options{Token: "tok", Theme: Dark, Logger: log.New(io.Discard, "", 0)})
	if err := v.LoadComments(context.Background()); err != nil {
		t.Fatal(err)
	}
	v.SetKeyword("hello")

	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"2 Comments",
		"Hello world",
		"On Go | Alice | 05/01/2024 3:04 PM",
		"/pages/posts/go#c1",
		ansiDark,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("вывод не содержит %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Goodbye") {
		t.Errorf("отфильтрованный комментарий выведен:\n%s", out)
	}
}

func TestRender_MissingRefs(t *testing.T) {
	v := New(&fakeService{comments: []models.Comment{{ID: "c1", Content: "orphan"}}},
		Options{Token: "tok", Logger: log.New(io.Discard, "", 0)})
	v.LoadComments(context.Background())
	v.OpenEditor(models.Comment{ID: "c1", Content: "orphan"})

	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "/pages/posts/#c1") || !strings.Contains(buf.String(), "[Update comment]") {
		t.Errorf("вывод:\n%s", buf.String())
	}
}

func TestParseTheme(t *testing.T) {
	if ParseTheme(" Dark ") != Dark || ParseTheme("light") != Light || ParseTheme("") != Light {
		t.Error("ParseTheme вернул неверную тему")
	}
}

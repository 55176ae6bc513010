package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"usercomments/pkg/client"
	"usercomments/pkg/config"
	"usercomments/pkg/models"
	"usercomments/pkg/view"
)

const help = `commands:
  list              show comments
  search <text>     filter by text, empty to reset
  edit <n>          edit comment n
  delete <n>        delete comment n
  page <n>          switch page
  reload            fetch comments again
  quit`

func main() {
	envFile := flag.String("env", ".env", "файл с переменными окружения")
	apiURL := flag.String("api", "", "адрес API комментариев (COMMENTS_API_URL)")
	token := flag.String("token", "", "токен сессии (SESSION_TOKEN)")
	theme := flag.String("theme", "", "тема: light или dark (THEME)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *token != "" {
		cfg.Token = *token
	}
	if *theme != "" {
		cfg.Theme = *theme
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func(q string) (string, bool) {
		fmt.Fprint(out, q)
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}

	v := view.New(client.New(cfg.APIURL), view.Options{
		Theme: view.ParseTheme(cfg.Theme),
		Notifier: view.NotifierFunc(func(msg string) {
			fmt.Fprintln(out, "✔", msg)
		}),
		Confirmer: view.ConfirmerFunc(func(q string) bool {
			answer, _ := prompt(q + " [y/N] ")
			answer = strings.ToLower(strings.TrimSpace(answer))
			return answer == "y" || answer == "yes"
		}),
		Logger: log.New(os.Stderr, "", log.LstdFlags),
	})
	if cfg.Token == "" {
		fmt.Fprintln(out, "нет токена сессии: задайте SESSION_TOKEN или -token")
	}
	v.SetToken(ctx, cfg.Token)
	v.Render(out)

	for {
		line, ok := prompt("> ")
		if !ok || ctx.Err() != nil {
			return scanner.Err()
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "":
		case "list":
			v.Render(out)
		case "search":
			v.SetKeyword(arg)
			v.Render(out)
		case "edit":
			c, ok := pick(v, arg)
			if !ok {
				fmt.Fprintln(out, "нет такого комментария")
				continue
			}
			v.OpenEditor(c)
			v.Render(out)
			draft, ok := prompt("new text (empty to cancel): ")
			if !ok || draft == "" {
				v.CloseEditor()
				continue
			}
			v.SetDraft(draft)
			v.SubmitEdit(ctx)
			v.Render(out)
		case "delete":
			c, ok := pick(v, arg)
			if !ok {
				fmt.Fprintln(out, "нет такого комментария")
				continue
			}
			v.DeleteComment(ctx, c)
			v.Render(out)
		case "page":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				fmt.Fprintln(out, "неверный номер страницы")
				continue
			}
			v.SetPage(ctx, n)
			v.Render(out)
		case "reload":
			v.LoadComments(ctx)
			v.Render(out)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintln(out, help)
		}
	}
}

// pick возвращает комментарий по номеру в отфильтрованном списке (с 1).
func pick(v *view.CommentListView, arg string) (c models.Comment, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	filtered := v.Filtered()
	if err != nil || n < 1 || n > len(filtered) {
		return c, false
	}
	return filtered[n-1], true
}

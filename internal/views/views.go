package views

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"linkstash/internal/models"
	"linkstash/internal/services"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"domain": func(raw string) string {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return raw
		}
		return strings.TrimPrefix(u.Host, "www.")
	},
	"fmtDate": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"pages": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	},
	"add": func(a, b int) int { return a + b },
}

var templates = template.Must(template.New("").Funcs(funcs).ParseFS(files, "templates/*.html"))

// BookmarksData is everything the list page needs: the snapshot owned by
// the list controller plus the transient form state.
type BookmarksData struct {
	User       models.User
	State      services.ListState
	TotalPages int

	FormOpen  bool
	FormURL   string
	FormTitle string
	FormError string
	EditID    string
}

type PageData struct {
	User *models.User
}

func Render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Error rendering template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

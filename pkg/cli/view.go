package cli

import (
	"html/template"
	"log/slog"
	"net/http"
)

func homeViewHandler(tmpl *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := map[string]any{
			"version":    version,
			"commit":     commit,
			"build_date": date,
			"err":        r.URL.Query().Get("err"),
		}
		if err := tmpl.ExecuteTemplate(w, "home", d); err != nil {
			slog.Error("template render failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

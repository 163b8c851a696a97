package http

import (
	"net/http"
	"time"

	"padaria/internal/core"
	applog "padaria/internal/log"
)

// variantLabels holds the form labels shown for each bread variant.
var variantLabels = map[core.Variant]string{
	core.Hamburger:       "Pão de hambúrguer",
	core.MediumHamburger: "Pão de hambúrguer médio",
	core.Bisnaga:         "Bisnaga",
	core.Baguette:        "Baguete",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	type variantField struct {
		Name  string
		Label string
	}
	data := struct {
		Today    string
		Variants []variantField
	}{
		Today: core.FormatDay(time.Now()),
	}
	for _, v := range core.Variants() {
		label := variantLabels[v]
		if label == "" {
			label = string(v)
		}
		data.Variants = append(data.Variants, variantField{Name: string(v), Label: label})
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

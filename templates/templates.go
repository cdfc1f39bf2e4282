// Package templates holds the embedded HTML pages and fragments.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"cotizador/models"
	"cotizador/utils"
)

//go:embed *.html
var files embed.FS

// Funcs are the helpers available to every template
var Funcs = template.FuncMap{
	"mxn":   utils.FormatMXNCents,
	"pct2":  func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	"lower": strings.ToLower,
	"fecha": fecha,
	"dash":  dash,
	"intOr": intOr,
}

// Parse parses every embedded template
func Parse() (*template.Template, error) {
	tmpl, err := template.New("cotizador").Funcs(Funcs).ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

func fecha(v any) string {
	switch t := v.(type) {
	case models.APITime:
		return t.DateMX()
	case *models.APITime:
		return t.DateMX()
	}
	return "-"
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func intOr(v *int, def string) string {
	if v == nil || *v == 0 {
		return def
	}
	return fmt.Sprint(*v)
}

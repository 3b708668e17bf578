package report

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.uber.org/zap"
)

//go:embed templates/summary.md.go.tmpl
var fallbackSummaryTemplate string

const fallbackTemplateName = "summary.md.go.tmpl"

// ParseTemplate parses the markdown template at templatePath, falling back to
// the embedded one when the path is empty or cannot be parsed.
func ParseTemplate(templatePath string, logger *zap.Logger) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			logger.Warn("failed to parse a template, using the embedded one",
				zap.String("templatePath", templatePath),
				zap.Error(err),
			)
		}
	}

	tmpl, err := template.New(fallbackTemplateName).
		Funcs(funcMap).
		Parse(fallbackSummaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// WriteMarkdown renders doc with tmpl.
func WriteMarkdown(w io.Writer, tmpl *template.Template, doc Document) error {
	if err := tmpl.Execute(w, doc); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}

package validation

import (
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/report.txt
var reportTemplateSource string

var (
	reportTemplateOnce sync.Once
	reportTemplate     *pongo2.Template
	reportTemplateErr  error
)

// TextMeta labels a rendered text report.
type TextMeta struct {
	Document string
	TypeName string
}

// RenderText writes a human readable report.
func RenderText(w io.Writer, report Report, meta TextMeta) error {
	tpl, err := textTemplate()
	if err != nil {
		return err
	}
	ctx := pongo2.Context{
		"report":    report,
		"document":  meta.Document,
		"type_name": meta.TypeName,
	}
	if err := tpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("validation: render report: %w", err)
	}
	return nil
}

func textTemplate() (*pongo2.Template, error) {
	reportTemplateOnce.Do(func() {
		reportTemplate, reportTemplateErr = pongo2.FromString(reportTemplateSource)
		if reportTemplateErr != nil {
			reportTemplateErr = fmt.Errorf("validation: parse report template: %w", reportTemplateErr)
		}
	})
	return reportTemplate, reportTemplateErr
}

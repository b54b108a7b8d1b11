// Package templates renders the minimal monitoring page.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"resumidorDeAtas/internal/models"
)

// JobsPage lists all known jobs, most recently updated first.
func JobsPage(jobs []models.Job) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHeader); err != nil {
			return err
		}

		if len(jobs) == 0 {
			if _, err := io.WriteString(w, `<p>Nenhum job registrado.</p>`); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, `<table><tr><th>Job</th><th>Status</th><th>Título</th><th></th></tr>`); err != nil {
				return err
			}
			for _, job := range jobs {
				if err := writeJobRow(w, job); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</table>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, pageFooter)
		return err
	})
}

func writeJobRow(w io.Writer, job models.Job) error {
	link := ""
	if job.Status == models.StatusDone {
		link = fmt.Sprintf(`<a href="/ata/%s">baixar ata</a>`, templ.EscapeString(job.ID))
	}
	_, err := fmt.Fprintf(w,
		`<tr><td><code>%s</code></td><td class=%q>%s</td><td>%s</td><td>%s</td></tr>`,
		templ.EscapeString(job.ID),
		string(job.Status),
		templ.EscapeString(string(job.Status)),
		templ.EscapeString(job.Title),
		link,
	)
	return err
}

const pageHeader = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Resumidor de Atas</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
.done { color: green; }
.error { color: red; }
.processing { color: #a60; }
</style>
</head>
<body>
<h1>Resumidor de Atas</h1>
`

const pageFooter = `
</body>
</html>
`

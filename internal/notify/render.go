package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

func renderText(changes []Change, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Site change report\n")
	fmt.Fprintf(&b, "Detected at: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Sites updated: %d\n\n", len(changes))

	for _, c := range changes {
		fmt.Fprintf(&b, "== %s ==\n", c.URL)
		r := c.Report
		if r == nil {
			continue
		}
		if r.Initial {
			b.WriteString("  First observation; monitoring starts now.\n\n")
			continue
		}
		if r.ContentChanged {
			fmt.Fprintf(&b, "  Content changed (text length %+d)\n", r.TextLengthDelta)
		}
		if r.PDFChanges != nil {
			for _, ref := range r.PDFChanges.Added {
				fmt.Fprintf(&b, "  PDF added:   %s (%s)\n", ref.Text, ref.URL)
			}
			for _, ref := range r.PDFChanges.Removed {
				fmt.Fprintf(&b, "  PDF removed: %s (%s)\n", ref.Text, ref.URL)
			}
		}
		if r.LinkChanges != nil {
			for _, u := range r.LinkChanges.Added {
				fmt.Fprintf(&b, "  Link added:   %s\n", u)
			}
			for _, u := range r.LinkChanges.Removed {
				fmt.Fprintf(&b, "  Link removed: %s\n", u)
			}
		}
		if r.ImageChanges != nil {
			for _, u := range r.ImageChanges.Added {
				fmt.Fprintf(&b, "  Image added:   %s\n", u)
			}
			for _, u := range r.ImageChanges.Removed {
				fmt.Fprintf(&b, "  Image removed: %s\n", u)
			}
		}
		if r.UpdateIndicatorsChanged {
			b.WriteString("  Update indicators changed\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
  body { font-family: Arial, sans-serif; margin: 20px; }
  .header { background-color: #f0f8ff; padding: 16px; border-radius: 5px; }
  .site { border: 1px solid #ddd; margin: 12px 0; padding: 12px; border-radius: 5px; }
  .site-url { font-weight: bold; color: #0066cc; }
  .added { color: #008000; }
  .removed { color: #cc0000; }
  .modified { color: #ff6600; }
  .footer { margin-top: 24px; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="header">
  <h2>Site change report</h2>
  <p><strong>Detected at:</strong> {{.Timestamp}}</p>
  <p><strong>Sites updated:</strong> {{len .Changes}}</p>
</div>
{{range .Changes}}
<div class="site">
  <p class="site-url"><a href="{{.URL}}">{{.URL}}</a></p>
  {{with .Report}}
  <ul>
    {{if .Initial}}<li>First observation; monitoring starts now.</li>{{end}}
    {{if .ContentChanged}}<li class="modified">Content changed (text length {{printf "%+d" .TextLengthDelta}})</li>{{end}}
    {{with .PDFChanges}}
      {{range .Added}}<li class="added">PDF added: {{.Text}} &mdash; <a href="{{.URL}}">{{.URL}}</a>{{if .Title}} ({{.Title}}){{end}}</li>{{end}}
      {{range .Removed}}<li class="removed">PDF removed: {{.Text}} &mdash; <a href="{{.URL}}">{{.URL}}</a></li>{{end}}
    {{end}}
    {{with .LinkChanges}}
      {{range .Added}}<li class="added">Link added: <a href="{{.}}">{{.}}</a></li>{{end}}
      {{range .Removed}}<li class="removed">Link removed: {{.}}</li>{{end}}
    {{end}}
    {{with .ImageChanges}}
      {{range .Added}}<li class="added">Image added: {{.}}</li>{{end}}
      {{range .Removed}}<li class="removed">Image removed: {{.}}</li>{{end}}
    {{end}}
    {{if .UpdateIndicatorsChanged}}<li class="modified">Update indicators changed</li>{{end}}
  </ul>
  {{end}}
</div>
{{end}}
<div class="footer">
  <p>Sent automatically by sitewatch.</p>
</div>
</body>
</html>
`))

func renderHTML(changes []Change, now time.Time) (string, error) {
	var b strings.Builder
	data := struct {
		Timestamp string
		Changes   []Change
	}{
		Timestamp: now.Format("2006-01-02 15:04:05"),
		Changes:   changes,
	}
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

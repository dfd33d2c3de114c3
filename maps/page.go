package maps

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gurre/cloud-api-samples/apierr"
)

// PageName is the artifact name of the rendered map page.
const PageName = "map_directions.html"

//go:embed templates/optimized_waypoints.html
var templates embed.FS

// PageData fills the map page template.
type PageData struct {
	APIKey      string
	Origin      string
	Destination string
	Waypoints   []string
}

// DefaultTemplate returns the bundled optimized-waypoints page.
func DefaultTemplate() (*template.Template, error) {
	t, err := template.ParseFS(templates, "templates/optimized_waypoints.html")
	if err != nil {
		return nil, apierr.Configf("maps.DefaultTemplate", "failed to parse template: %v", err)
	}
	return t, nil
}

// LoadTemplate parses a page template from a file.
func LoadTemplate(path string) (*template.Template, error) {
	t, err := template.ParseFiles(path)
	if err != nil {
		return nil, apierr.New(apierr.KindLocalIO, "maps.LoadTemplate", err)
	}
	return t, nil
}

// RenderPage executes t with data. Values are escaped for the context they appear in.
func RenderPage(t *template.Template, data PageData) (string, error) {
	const op = "maps.RenderPage"
	if data.APIKey == "" {
		return "", apierr.Configf(op, "an API key is required")
	}
	if data.Waypoints == nil {
		data.Waypoints = []string{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", apierr.Shapef(op, "failed to render page: %v", err)
	}
	return buf.String(), nil
}

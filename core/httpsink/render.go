package httpsink

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/Melown/libhttp/core/listing"
)

// ListingRenderer turns an already sorted listing into response bytes. The
// transport sorts and frames; the renderer owns the byte encoding.
type ListingRenderer interface {
	// ContentType returns the media type of the rendered output.
	ContentType() string

	// Render writes the encoded listing. Entries arrive in their final
	// order: directories first, then files, names ascending.
	Render(w io.Writer, entries listing.Listing) error
}

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><title>Index</title></head>
<body>
<h1>Index</h1>
<ul>
{{- range . }}
<li><a href="{{ .Name }}{{ if eq .Kind.String "dir" }}/{{ end }}">{{ .Name }}{{ if eq .Kind.String "dir" }}/{{ end }}</a></li>
{{- end }}
</ul>
</body>
</html>
`))

// HTMLRenderer renders listings as a minimal HTML index page. It is the
// transport default.
type HTMLRenderer struct{}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (HTMLRenderer) Render(w io.Writer, entries listing.Listing) error {
	return listingTemplate.Execute(w, entries)
}

// JSONRenderer renders listings as a JSON array of {name, kind} objects,
// suited for API consumers.
type JSONRenderer struct{}

func (JSONRenderer) ContentType() string { return "application/json; charset=utf-8" }

func (JSONRenderer) Render(w io.Writer, entries listing.Listing) error {
	type entry struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry{Name: e.Name, Kind: e.Kind.String()})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(out)
}

package routekit

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	clientdist "github.com/routekit-dev/routekit/client/dist"
)

var clientETag = func() string {
	sum := sha256.Sum256(clientdist.RoutekitJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:]))
}()

func (a *App) serveClient(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	// The bundle URL is unversioned, so correctness rests on the ETag.
	w.Header().Set("ETag", clientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Dev iterates on the bundle, so skip the cache entirely; otherwise
	// let clients revalidate against the ETag on every load.
	if a.config.DevMode {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}

	if etagMatches(r.Header.Get("If-None-Match"), clientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(clientdist.RoutekitJS)
}

// etagMatches reports whether any entry of an If-None-Match list matches
// the tag. Weak validators (W/"...") compare equal to their strong form,
// which is fine for a 304 on an immutable embedded asset.
func etagMatches(header, tag string) bool {
	if tag == "" {
		return false
	}
	for header != "" {
		var candidate string
		candidate, header, _ = strings.Cut(header, ",")
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == tag {
			return true
		}
	}
	return false
}

var shellTmpl = template.Must(template.New("shell").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{.Head}}</head>
<body>
{{.Body}}<script src="{{.ClientPath}}" data-ws="{{.SocketPath}}" defer></script>
</body>
</html>
`))

// renderShell builds the SPA document once at startup. Head and Body are
// trusted markup supplied by the application, not request data.
func renderShell(cfg ShellConfig) []byte {
	var buf bytes.Buffer
	err := shellTmpl.Execute(&buf, struct {
		Title      string
		Head       template.HTML
		Body       template.HTML
		ClientPath string
		SocketPath string
	}{
		Title:      cfg.Title,
		Head:       template.HTML(cfg.Head),
		Body:       template.HTML(cfg.Body),
		ClientPath: ClientPath,
		SocketPath: SocketPath,
	})
	if err != nil {
		// The template and inputs are fixed at startup.
		panic(fmt.Sprintf("routekit: shell template: %v", err))
	}
	return buf.Bytes()
}

package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"github.com/conneroisu/vedit/internal/validation"
	"github.com/conneroisu/vedit/internal/version"
)

const defaultPreviewFile = "index.html"

// shellScript bridges the preview iframe and the websocket: tracker events
// posted by the iframe go to editor clients, editor commands go to the
// iframe.
const shellScript = `(function () {
  var frame = document.getElementById('ve-preview');
  if (!frame) { return; }
  var status = document.getElementById('ve-status');
  var proto = location.protocol === 'https:' ? 'wss' : 'ws';
  var ws = new WebSocket(proto + '://' + location.host + '/ws?role=preview');
  var enabled = true;
  function post(msg) { if (frame.contentWindow) { frame.contentWindow.postMessage(msg, '*'); } }
  ws.onopen = function () { status.textContent = 'connected'; };
  ws.onclose = function () { status.textContent = 'disconnected'; };
  ws.onmessage = function (e) {
    try { post(JSON.parse(e.data)); } catch (err) { console.warn('vedit: bad message', err); }
  };
  window.addEventListener('message', function (e) {
    if (e.source !== frame.contentWindow || !e.data || !e.data.type) { return; }
    if (ws.readyState === WebSocket.OPEN) { ws.send(JSON.stringify(e.data)); }
  });
  frame.addEventListener('load', function () {
    post({ type: 'VISUAL_EDITOR_INIT', payload: { enabled: enabled } });
  });
  document.getElementById('ve-toggle').addEventListener('click', function () {
    enabled = !enabled;
    post({ type: 'VISUAL_EDITOR_TOGGLE', payload: { enabled: enabled } });
    this.textContent = enabled ? 'Disable editing' : 'Enable editing';
  });
})();`

const shellStyle = `body{margin:0;font-family:system-ui,-apple-system,sans-serif;background:#f5f5f5}
header{display:flex;gap:12px;align-items:center;padding:8px 16px;background:#1f2937;color:#fff}
header form{display:flex;gap:8px;margin-left:auto}
header input{padding:4px 6px}
#ve-status{font-size:12px;opacity:.7}
iframe{border:0;width:100%;height:calc(100vh - 48px);background:#fff}
.ve-empty{padding:32px;color:#374151}`

// shellPage renders the editor shell for one preview file. previewURL is
// empty when no project is selected; problem explains a rejected selection.
func shellPage(projectID, file, previewURL, problem string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		e := templ.EscapeString[string]
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>vedit</title>
<style>%s</style>
</head>
<body>
<header>
<strong>vedit</strong>
<span id="ve-status">connecting</span>
<button id="ve-toggle" type="button">Disable editing</button>
<form method="get" action="/">
<input name="project" placeholder="project" value="%s">
<input name="file" placeholder="file" value="%s">
<button type="submit">Open</button>
</form>
<span>%s</span>
</header>
`, shellStyle, e(projectID), e(file), e(version.GetShortVersion()))
		if err != nil {
			return err
		}

		if previewURL == "" {
			message := "Choose a project and file to edit."
			if problem != "" {
				message = problem
			}
			_, err = fmt.Fprintf(w, "<p class=\"ve-empty\">%s</p>\n</body>\n</html>\n", e(message))
			return err
		}

		_, err = fmt.Fprintf(w, `<iframe id="ve-preview" src="%s" title="preview"></iframe>
<script>%s</script>
</body>
</html>
`, e(previewURL), shellScript)
		return err
	})
}

func (s *Server) shellHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		projectID := r.URL.Query().Get("project")
		file := r.URL.Query().Get("file")
		if file == "" {
			file = defaultPreviewFile
		}

		var previewURL, problem string
		if projectID != "" {
			if err := validation.ValidateProjectID(projectID); err != nil {
				problem = err.Error()
			} else if cleaned, err := validation.CleanRelativePath(file); err != nil {
				problem = err.Error()
			} else {
				file = cleaned
				previewURL = "/preview/" + url.PathEscape(projectID) + "/" + (&url.URL{Path: cleaned}).EscapedPath()
			}
		}

		templ.Handler(shellPage(projectID, file, previewURL, problem)).ServeHTTP(w, r)
	})
}

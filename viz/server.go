// Package viz serves a live-updating training dashboard: an index page
// listing every goal's stats by element id, pushed incremental updates over
// a websocket as training progresses. Adapted from the teacher's prototype
// svg-training-view server - same shape (html/template index, gorilla
// websocket push loop, throttled publish), generalized from a single grid
// visualization to an arbitrary stream of named-element updates.
package viz

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"cyberxp/logx"
)

var upgrader = websocket.Upgrader{}

const (
	writeWait        = 1 * time.Second
	closeGracePeriod = 2 * time.Second
	publishInterval  = 200 * time.Millisecond
)

// Server serves the dashboard index page and pushes EleUpdate batches to any
// connected client over /ws.
type Server struct {
	addr    string
	tmpl    *template.Template
	updates <-chan []EleUpdate

	mu   sync.RWMutex
	last []EleUpdate

	httpServer *http.Server
}

// NewServer builds a dashboard server listening on addr. initial seeds the
// index page's first render. updates is read only by the push loops of
// connected websocket clients: each batch is cached (for the next page load)
// and sent to the one client whose loop received it, so batches are not
// broadcast to every client, and none are read while no client is connected.
func NewServer(addr string, initial []EleUpdate, updates <-chan []EleUpdate) (*Server, error) {
	tmpl, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing dashboard template: %w", err)
	}
	return &Server{
		addr:    addr,
		tmpl:    tmpl,
		updates: updates,
		last:    initial,
	}, nil
}

// Handler returns the mux serving the index page and websocket endpoint,
// usable directly with httptest or a caller's own http.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWebsocket)
	return mux
}

// Serve runs the dashboard until ctx is canceled, at which point it shuts
// down its HTTP server gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), closeGracePeriod)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if err := s.tmpl.Execute(w, last); err != nil {
		logx.Error("viz: rendering index: %v", err)
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logx.Error("viz: websocket upgrade: %v", err)
		return
	}
	defer s.closeWebsocket(ws)
	s.publishUpdates(ws)
}

// publishUpdates drains s.updates into ws, throttled to at most one push per
// publishInterval so a fast-training agent doesn't flood the client with a
// push for every single episode.
func (s *Server) publishUpdates(ws *websocket.Conn) {
	last := time.Time{}
	for batch := range s.updates {
		s.mu.Lock()
		s.last = mergeUpdates(s.last, batch)
		s.mu.Unlock()

		if time.Since(last) < publishInterval {
			continue
		}
		last = time.Now()

		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			logx.Error("viz: setting write deadline: %v", err)
			return
		}
		if err := ws.WriteJSON(batch); err != nil {
			logx.Error("viz: writing update: %v", err)
			return
		}
	}
}

func (s *Server) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = ws.Close()
}

// mergeUpdates folds batch into last, replacing any existing entry for the
// same element id so the index page's cached snapshot always reflects the
// most recent value of every element that has ever been updated.
func mergeUpdates(last []EleUpdate, batch []EleUpdate) []EleUpdate {
	byID := make(map[string]EleUpdate, len(last)+len(batch))
	order := make([]string, 0, len(last)+len(batch))
	for _, u := range last {
		if _, ok := byID[u.EleID]; !ok {
			order = append(order, u.EleID)
		}
		byID[u.EleID] = u
	}
	for _, u := range batch {
		if _, ok := byID[u.EleID]; !ok {
			order = append(order, u.EleID)
		}
		byID[u.EleID] = u
	}
	merged := make([]EleUpdate, len(order))
	for i, id := range order {
		merged[i] = byID[id]
	}
	return merged
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head><title>cyberxp training dashboard</title></head>
<body>
<table id="stats">
{{range .}}<tr id="{{.EleID}}"><td>{{.EleID}}</td><td class="value">{{range .Ops}}{{.Value}}{{end}}</td></tr>
{{end}}
</table>
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (evt) => {
	const updates = JSON.parse(evt.data);
	for (const u of updates) {
		const el = document.getElementById(u.eleId);
		if (!el) continue;
		for (const op of u.ops) {
			if (op.key === "textContent") {
				el.textContent = op.value;
			} else {
				el.setAttribute(op.key, op.value);
			}
		}
	}
};
</script>
</body>
</html>`

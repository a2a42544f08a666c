// Package devserver serves the build output with live reload during development.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/unrolled/secure"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

const (
	// EventsPath streams reload events to connected browsers.
	EventsPath = "/__forge/events"
	// ClientPath serves the live reload client script.
	ClientPath = "/__forge/reload.js"

	shutdownTimeout = 5 * time.Second
)

const clientScript = `(function () {
  var source = new EventSource("` + EventsPath + `");
  source.addEventListener("reload", function () { window.location.reload(); });
})();
`

var (
	_ ports.DevServer = (*Server)(nil)

	scriptTag = []byte(`<script src="` + ClientPath + `"></script>`)
	bodyClose = []byte("</body>")
)

// Server implements ports.DevServer.
type Server struct {
	logger ports.Logger

	mu      sync.Mutex
	clients map[chan struct{}]struct{}
	url     string
	done    chan struct{}
	err     error
	closing chan struct{}
}

// New creates a Server.
func New(logger ports.Logger) *Server {
	return &Server{
		logger:  logger,
		clients: make(map[chan struct{}]struct{}),
	}
}

// Start listens on cfg.Address and serves dir until ctx is done.
func (s *Server) Start(ctx context.Context, cfg domain.ServerConfig, dir string) error {
	addr := cfg.Address
	if addr == "" {
		addr = domain.DefaultServerAddress
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return domain.Annotate(domain.ErrServerStartFailed, "address", addr, "reason", err.Error())
	}

	srv := &http.Server{
		Handler:           s.Handler(cfg, dir),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	s.mu.Lock()
	s.url = "http://" + ln.Addr().String()
	s.done = make(chan struct{})
	s.closing = make(chan struct{})
	closing := s.closing
	done := s.done
	s.mu.Unlock()

	srv.RegisterOnShutdown(func() { close(closing) })

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		defer close(done)
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}()

	s.logger.Info(fmt.Sprintf("Serving %s at %s", dir, s.URL()))
	return nil
}

// Handler returns the HTTP handler serving dir.
func (s *Server) Handler(cfg domain.ServerConfig, dir string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(EventsPath, s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc(ClientPath, handleClient).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(newStaticHandler(dir, cfg.Inject))

	sm := secure.New(secure.Options{
		IsDevelopment:      true,
		BrowserXssFilter:   true,
		ContentTypeNosniff: true,
	})
	return sm.Handler(r)
}

// Reload asks every connected browser to reload.
func (s *Server) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.clients {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Wait blocks until the server has shut down.
func (s *Server) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	<-done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Server) subscribe() (chan struct{}, <-chan struct{}) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[ch] = struct{}{}
	return ch, s.closing
}

func (s *Server) unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, ch)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ch, closing := s.subscribe()
	defer s.unsubscribe(ch)

	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closing:
			return
		case <-ch:
			_, _ = fmt.Fprint(w, "event: reload\ndata: {}\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func handleClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = fmt.Fprint(w, clientScript)
}

type staticHandler struct {
	dir    string
	inject bool
	files  http.Handler
}

func newStaticHandler(dir string, inject bool) *staticHandler {
	return &staticHandler{
		dir:    dir,
		inject: inject,
		files:  http.FileServer(http.Dir(dir)),
	}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	if !h.inject {
		h.files.ServeHTTP(w, r)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	file := filepath.Join(h.dir, filepath.FromSlash(name))
	if info, err := os.Stat(file); err == nil && info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			h.files.ServeHTTP(w, r)
			return
		}
		file = filepath.Join(file, "index.html")
	}

	if !strings.EqualFold(filepath.Ext(file), ".html") {
		h.files.ServeHTTP(w, r)
		return
	}

	content, err := os.ReadFile(file) //nolint:gosec // confined to the output directory by path.Clean
	if err != nil {
		h.files.ServeHTTP(w, r)
		return
	}

	info, _ := os.Stat(file)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, filepath.Base(file), info.ModTime(), bytes.NewReader(InjectClient(content)))
}

// InjectClient inserts the live reload script before the last </body> tag,
// or appends it when the document has none.
func InjectClient(html []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(html), bodyClose)
	if idx < 0 {
		return append(bytes.Clone(html), scriptTag...)
	}

	out := make([]byte, 0, len(html)+len(scriptTag))
	out = append(out, html[:idx]...)
	out = append(out, scriptTag...)
	out = append(out, html[idx:]...)
	return out
}

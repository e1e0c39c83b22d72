// Package server hosts the visual editor: the patch and AI edit API, the file
// store passthrough, preview pages with the tracker injected, the editor
// shell and the websocket relay between preview and editor clients.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/conneroisu/vedit/internal/aiedit"
	"github.com/conneroisu/vedit/internal/batch"
	"github.com/conneroisu/vedit/internal/changeset"
	"github.com/conneroisu/vedit/internal/config"
	"github.com/conneroisu/vedit/internal/llm"
	"github.com/conneroisu/vedit/internal/logging"
	"github.com/conneroisu/vedit/internal/middleware"
	"github.com/conneroisu/vedit/internal/patch"
	"github.com/conneroisu/vedit/internal/protocol"
	"github.com/conneroisu/vedit/internal/storage"
	"github.com/conneroisu/vedit/internal/validation"
	"github.com/conneroisu/vedit/internal/version"
	"github.com/conneroisu/vedit/internal/watcher"
)

// Server serves the editor API and relays tracker messages.
type Server struct {
	config *config.Config
	store  storage.Store
	logger logging.Logger

	generator *patch.Generator
	aiEditor  *aiedit.Editor
	batcher   *batch.Orchestrator
	history   *changeset.History
	pending   *changeset.Pending
	watcher   *watcher.FileWatcher
	limiter   *middleware.RateLimiter

	httpServer  *http.Server
	serverMutex sync.RWMutex

	clients      map[*Client]bool
	clientsMutex sync.RWMutex
	broadcast    chan outbound
	register     chan *Client
	unregister   chan *Client
	done         chan struct{}

	shutdownOnce  sync.Once
	isShutdown    bool
	shutdownMutex sync.RWMutex
}

// Option configures a Server.
type Option func(*Server)

// WithLLM sets the code-edit client used by AI and batch edits.
func WithLLM(client llm.Client) Option {
	return func(s *Server) {
		s.setLLM(client)
	}
}

// WithWatcher sets the watcher that reports on-disk changes.
func WithWatcher(fw *watcher.FileWatcher) Option {
	return func(s *Server) {
		s.watcher = fw
	}
}

// New creates a server. When no WithLLM option is given a client is built
// from the ai section of cfg.
func New(cfg *config.Config, store storage.Store, logger logging.Logger, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		config:     cfg,
		store:      store,
		logger:     logger.WithComponent("server"),
		generator:  patch.NewGenerator(logger),
		history:    changeset.NewHistory(cfg.Editor.HistoryLimit),
		pending:    changeset.NewPending(),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, 0)
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.aiEditor == nil {
		client, err := llm.New(cfg.LLMOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to create code-edit client: %w", err)
		}
		s.setLLM(client)
	}

	return s, nil
}

func (s *Server) setLLM(client llm.Client) {
	s.aiEditor = aiedit.NewEditor(client, s.logger,
		aiedit.WithWindowRadius(s.config.Editor.AIWindowRadius),
		aiedit.WithMaxLineRatio(s.config.Editor.MaxLineRatio),
	)
	s.batcher = batch.NewOrchestrator(client, s.logger)
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/visual-edit", s.handleVisualEdit)
	mux.HandleFunc("/api/visual-edit/batch", s.handleBatchEdit)
	mux.HandleFunc("/api/locate", s.handleLocate)
	mux.HandleFunc("/api/pending", s.handlePending)
	mux.HandleFunc("/api/files", s.handleFiles)
	mux.HandleFunc("/api/files/list", s.handleFileList)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/history/undo", s.handleUndo)
	mux.HandleFunc("/api/history/redo", s.handleRedo)
	mux.HandleFunc("/__vedit/inject.js", s.handleInjectScript)
	mux.HandleFunc("/preview/{projectId}/{path...}", s.handlePreview)
	mux.Handle("/{$}", s.shellHandler())

	return s.middlewareChain().Apply(mux)
}

// Start runs the websocket hub and the watcher, then serves until the server
// is shut down.
func (s *Server) Start(ctx context.Context) error {
	go s.runWebSocketHub(ctx)
	s.setupFileWatcher(ctx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	s.logger.Info(ctx, "Visual editor listening", "url", url, "version", version.GetShortVersion())
	if s.config.Server.Open {
		go s.openBrowser(url)
	}

	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupFileWatcher watches the disk store root and reports changed files to
// editor clients. Other stores have nothing on disk to watch.
func (s *Server) setupFileWatcher(ctx context.Context) {
	disk, ok := s.store.(*storage.DiskStore)
	if !ok || !s.config.Watch.Enabled {
		return
	}

	if s.watcher == nil {
		fw, err := watcher.NewFileWatcher(s.config.Watch.Debounce, s.logger)
		if err != nil {
			s.logger.Warn(ctx, err, "Failed to create file watcher")
			return
		}
		s.watcher = fw
	}

	s.watcher.AddFilter(watcher.JSXFilter)
	s.watcher.AddFilter(watcher.NoNodeModulesFilter)
	s.watcher.AddFilter(watcher.NoGitFilter)
	s.watcher.AddHandler(func(events []watcher.ChangeEvent) error {
		return s.handleFileChange(disk.Root(), events)
	})

	if err := s.watcher.AddRecursive(disk.Root()); err != nil {
		s.logger.Warn(ctx, err, "Failed to watch store root", "root", disk.Root())
		return
	}
	if err := s.watcher.Start(ctx); err != nil {
		s.logger.Warn(ctx, err, "Failed to start file watcher")
	}
}

// handleFileChange broadcasts FILE_CHANGED with the "projectId/path" key of
// every changed file under root.
func (s *Server) handleFileChange(root string, events []watcher.ChangeEvent) error {
	for _, event := range events {
		rel, err := filepath.Rel(root, event.Path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		key := filepath.ToSlash(rel)
		if !strings.Contains(key, "/") {
			// Files directly under the root belong to no project
			continue
		}
		s.logger.Debug(context.Background(), "File changed", "path", key, "type", event.Type.String())
		s.notifyFileChanged(key)
	}
	return nil
}

func (s *Server) notifyFileChanged(key string) {
	msg := protocol.MustNew(protocol.TypeFileChanged, protocol.FileChangedPayload{Path: key})
	data, err := protocol.Encode(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "Failed to encode file change", "path", key)
		return
	}
	s.publish(outbound{data: data, role: RoleEditor})
}

func (s *Server) openBrowser(url string) {
	time.Sleep(100 * time.Millisecond)

	if err := validation.ValidateURL(url); err != nil {
		s.logger.Warn(context.Background(), err, "Browser open failed due to invalid URL")
		return
	}

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		s.logger.Warn(context.Background(), err, "Failed to open browser")
	}
}

// middlewareChain is, outermost first: recovery, logging, security
// headers, CORS, then the edit rate limit.
func (s *Server) middlewareChain() *middleware.Chain {
	chain := middleware.NewChain(
		middleware.Recover(s.logger),
		middleware.Logging(s.logger),
		middleware.SecurityHeaders(),
		middleware.CORS(s.isAllowedOrigin,
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions),
	)
	if s.limiter != nil {
		chain.Use(middleware.RateLimit(s.limiter, s.logger, isEditRequest))
	}
	return chain
}

// isEditRequest matches the requests that may reach the code-edit endpoint.
func isEditRequest(r *http.Request) bool {
	return r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/visual-edit")
}

// allowedOrigins is the configured list plus the server's own addresses.
func (s *Server) allowedOrigins() []string {
	port := s.config.Server.Port
	allowed := append([]string{}, s.config.Server.AllowedOrigins...)
	return append(allowed,
		fmt.Sprintf("%s:%d", s.config.Server.Host, port),
		fmt.Sprintf("localhost:%d", port),
		fmt.Sprintf("127.0.0.1:%d", port),
	)
}

func (s *Server) isAllowedOrigin(origin string) bool {
	return validation.ValidateOrigin(origin, s.allowedOrigins()) == nil
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "Shutting down server")

		s.shutdownMutex.Lock()
		s.isShutdown = true
		s.shutdownMutex.Unlock()

		close(s.done)

		if s.watcher != nil {
			if err := s.watcher.Stop(); err != nil {
				s.logger.Warn(ctx, err, "Failed to stop file watcher")
			}
		}

		s.clientsMutex.Lock()
		for client := range s.clients {
			client.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		s.clients = make(map[*Client]bool)
		s.clientsMutex.Unlock()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

func (s *Server) shuttingDown() bool {
	s.shutdownMutex.RLock()
	defer s.shutdownMutex.RUnlock()
	return s.isShutdown
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "healthy"
	code := http.StatusOK
	if s.shuttingDown() {
		status = "shutting_down"
		code = http.StatusServiceUnavailable
	}

	s.clientsMutex.RLock()
	clientCount := len(s.clients)
	s.clientsMutex.RUnlock()

	health := map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"version":    version.GetShortVersion(),
		"build_info": version.GetBuildInfo(),
		"checks": map[string]interface{}{
			"storage":   map[string]interface{}{"status": "healthy", "driver": s.config.Storage.Driver},
			"websocket": map[string]interface{}{"status": "healthy", "clients": clientCount},
			"watcher":   map[string]interface{}{"status": "healthy", "enabled": s.watcher != nil},
			"history":   map[string]interface{}{"entries": s.history.Len(), "pending": s.pending.Len()},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"autosnake/game"
	"autosnake/models"
	"autosnake/server/board_views"
	"autosnake/server/fastview"
	"autosnake/server/root_view"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 2 * time.Second
)

// Controller is the part of the game the server drives. *game.Game
// satisfies it.
type Controller interface {
	Snapshot() game.Snapshot
	Pause()
	Resume()
	TogglePause() bool
	Reset()
	SetAlgorithm(models.Algorithm)
	Algorithm() models.Algorithm
}

// Server serves the board page, one websocket per open page, a small control
// API and the prometheus metrics. Snapshots handed to Publish are fanned out
// to every connected page.
type Server struct {
	addr     string
	ctl      Controller
	broker   *broker
	router   *mux.Router
	gatherer prometheus.Gatherer
	log      *slog.Logger
}

// NewServer builds the routes. A nil gatherer leaves out /metrics.
func NewServer(
	addr string,
	ctl Controller,
	gatherer prometheus.Gatherer,
) *Server {
	server := &Server{
		addr:     addr,
		ctl:      ctl,
		broker:   newBroker(),
		router:   mux.NewRouter(),
		gatherer: gatherer,
		log:      slog.Default().With("component", "server"),
	}
	server.routes()
	return server
}

func (server *Server) routes() {
	r := server.router
	r.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", server.serveWebsocket).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snapshot", server.serveSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/pause", server.control(server.ctl.Pause)).Methods(http.MethodPost)
	api.HandleFunc("/resume", server.control(server.ctl.Resume)).Methods(http.MethodPost)
	api.HandleFunc("/reset", server.control(server.ctl.Reset)).Methods(http.MethodPost)
	api.HandleFunc("/algorithm/{name}", server.serveAlgorithm).Methods(http.MethodPost)

	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the router, for use with httptest or another listener.
func (server *Server) Handler() http.Handler {
	return server.router
}

// Publish hands a snapshot to every open page. It never blocks and has the
// signature of game.PublishFunc.
func (server *Server) Publish(_ context.Context, snap game.Snapshot) {
	server.broker.publish(snap)
}

// Serve listens on the server's address until ctx is cancelled, then shuts
// down. Request contexts derive from ctx, so open websockets end with it.
func (server *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              server.addr,
		Handler:           server.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		server.log.Info("listening", "addr", server.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Serve the index.html main page, drawn from the current snapshot.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	// The page's views are only parsed here; they end with the request.
	rootView, err := root_view.NewRootView(r.Context(), nil)
	if err != nil {
		server.fail(w, "build root view", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	board := board_views.Convert(server.ctl.Snapshot())
	if err := renderTemplate(w, rootView, board); err != nil {
		server.log.Error("render index", "err", err)
		_, _ = w.Write([]byte(err.Error()))
	}
}

// serveWebsocket streams element updates to one page until it goes away, and
// applies the commands it sends back.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snapshots := server.broker.subscribe(ctx, server.ctl.Snapshot())
	rootView, err := root_view.NewRootView(ctx, snapshots)
	if err != nil {
		server.fail(w, "build root view", err)
		return
	}

	cli, err := fastview.NewClient(rootView.Updates(), w, r, server.handleMessage)
	if err != nil {
		server.log.Warn("websocket upgrade", "err", err)
		return
	}

	server.log.Debug("websocket opened", "remote", r.RemoteAddr, "pages", server.broker.count())
	if err := cli.Sync(); err != nil {
		server.log.Warn("websocket sync ended", "remote", r.RemoteAddr, "err", err)
		return
	}
	server.log.Debug("websocket closed", "remote", r.RemoteAddr)
}

// command is a control message sent by the page.
type command struct {
	Command   string `json:"command"`
	Algorithm string `json:"algorithm,omitempty"`
}

// handleMessage applies one page command. Malformed or unknown commands are
// logged and ignored; they do not close the socket.
func (server *Server) handleMessage(_ context.Context, msg []byte) error {
	var cmd command
	if err := json.Unmarshal(msg, &cmd); err != nil {
		server.log.Warn("malformed command", "err", err)
		return nil
	}

	switch cmd.Command {
	case "toggle-pause":
		server.ctl.TogglePause()
	case "pause":
		server.ctl.Pause()
	case "resume":
		server.ctl.Resume()
	case "reset":
		server.ctl.Reset()
	case "toggle-algorithm":
		server.ctl.SetAlgorithm(server.ctl.Algorithm().Toggle())
	case "algorithm":
		alg, err := models.ParseAlgorithm(cmd.Algorithm)
		if err != nil {
			server.log.Warn("bad algorithm command", "err", err)
			return nil
		}
		server.ctl.SetAlgorithm(alg)
	default:
		server.log.Warn("unknown command", "command", cmd.Command)
		return nil
	}

	server.broker.publish(server.ctl.Snapshot())
	return nil
}

func (server *Server) serveSnapshot(w http.ResponseWriter, _ *http.Request) {
	server.writeJSON(w, http.StatusOK, server.ctl.Snapshot())
}

// control wraps a game action as a POST handler that answers with the
// resulting snapshot.
func (server *Server) control(action func()) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		action()
		snap := server.ctl.Snapshot()
		server.broker.publish(snap)
		server.writeJSON(w, http.StatusOK, snap)
	}
}

func (server *Server) serveAlgorithm(w http.ResponseWriter, r *http.Request) {
	alg, err := models.ParseAlgorithm(mux.Vars(r)["name"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	server.control(func() { server.ctl.SetAlgorithm(alg) })(w, r)
}

func (server *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		server.log.Warn("write json", "err", err)
	}
}

func (server *Server) fail(w http.ResponseWriter, msg string, err error) {
	server.log.Error(msg, "err", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}

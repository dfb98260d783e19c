// Package web provides the HTTP display page, status JSON, settings
// endpoint and live websocket feed.
package web

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/sweeney/lambda-display/internal/display"
	"github.com/sweeney/lambda-display/internal/history"
	"github.com/sweeney/lambda-display/internal/status"
)

// SettingsSaver persists display preferences changed through /settings.
type SettingsSaver func(display.Preferences) error

// Server serves the display page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	hub        *Hub
	history    history.Reader
	saver      SettingsSaver
	dismiss    chan struct{}
}

// New creates a Server that reads state from the given tracker and
// streams live updates from hub.
func New(addr string, tracker *status.Tracker, hub *Hub) *Server {
	s := &Server{tracker: tracker, hub: hub, dismiss: make(chan struct{}, 1)}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/settings", s.handleSettings)
	mux.HandleFunc("/error/dismiss", s.handleDismiss)
	mux.HandleFunc("/history", s.handleHistoryPage)
	mux.HandleFunc("/lambdadata", s.handleRange(history.KindLambda))
	mux.HandleFunc("/tempdata", s.handleRange(history.KindTemp))
	mux.HandleFunc("/ws", hub.ServeWS)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// SetHistory enables the /lambdadata and /tempdata queries. Without a
// reader they answer 503.
func (s *Server) SetHistory(r history.Reader) {
	s.history = r
}

// SetSettingsSaver makes POST /settings persist the new preferences.
func (s *Server) SetSettingsSaver(fn SettingsSaver) {
	s.saver = fn
}

// Dismissals delivers a value each time the error modal's close button is
// pressed.
func (s *Server) Dismissals() <-chan struct{} {
	return s.dismiss
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully shuts down the server and closes websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// SettingsJSON is the body returned by /settings.
type SettingsJSON struct {
	DecimalPlaces int  `json:"decimal_places"`
	Blinking      bool `json:"blinking"`
	Recording     bool `json:"recording"`
}

// handleSettings returns the preferences on GET and updates them from form
// values on POST. Fields that are not sent keep their current value.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
			return
		}
		old := s.tracker.Preferences()
		prefs := old
		if v := r.PostForm.Get("decimal_places"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 || n > display.MaxDecimalPlaces {
				http.Error(w, "decimal_places must be 0-3", http.StatusBadRequest)
				return
			}
			prefs.DecimalPlaces = n
		}
		if v := r.PostForm.Get("blinking"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "blinking must be true or false", http.StatusBadRequest)
				return
			}
			prefs.BlinkingEnabled = b
		}
		recording := s.tracker.Recording()
		if v := r.PostForm.Get("recording"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "recording must be true or false", http.StatusBadRequest)
				return
			}
			recording = b
		}
		prefs = s.tracker.SetPreferences(prefs)
		s.tracker.SetRecording(recording)
		if s.saver != nil && prefs != old {
			if err := s.saver(prefs); err != nil {
				log.Printf("web: save settings: %v", err)
				http.Error(w, "settings applied but not saved", http.StatusInternalServerError)
				return
			}
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prefs := s.tracker.Preferences()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SettingsJSON{
		DecimalPlaces: prefs.DecimalPlaces,
		Blinking:      prefs.BlinkingEnabled,
		Recording:     s.tracker.Recording(),
	})
}

// handleDismiss closes the error modal. The event loop clears the error,
// so the request only signals it.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	select {
	case s.dismiss <- struct{}{}:
	default:
	}
	w.WriteHeader(http.StatusAccepted)
}

type messageJSON struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// handleRange answers GET ?start_time=...&end_time=... with the stored
// readings of kind, both bounds inclusive.
func (s *Server) handleRange(kind history.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.history == nil {
			writeJSON(w, http.StatusServiceUnavailable, messageJSON{"History is not enabled"})
			return
		}
		q := r.URL.Query()
		start, err1 := history.ParseTime(q.Get("start_time"))
		end, err2 := history.ParseTime(q.Get("end_time"))
		if err1 != nil || err2 != nil {
			writeJSON(w, http.StatusBadRequest, messageJSON{"Invalid values"})
			return
		}
		readings, err := s.history.Between(kind, start, end)
		if err != nil {
			log.Printf("web: %v", err)
			writeJSON(w, http.StatusInternalServerError, messageJSON{"Query failed"})
			return
		}
		if readings == nil {
			readings = []history.Reading{}
		}
		writeJSON(w, http.StatusOK, readings)
	}
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(historyHTML))
}

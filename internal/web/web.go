package web

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"gamecal/internal/catalog"
	"gamecal/internal/config"
	"gamecal/internal/feed"
	"gamecal/internal/gameclock"
	appLog "gamecal/internal/log"
	"gamecal/internal/model"
	"gamecal/internal/store"
	"gamecal/internal/timeline"
)

// Server provides the HTTP API for the schedule views, the reset timers,
// the completion checklist and the iCalendar feed.
type Server struct {
	cfg *config.Config
	cat *catalog.Catalog
	db  *store.Store
	mux *http.ServeMux

	// now is injectable so handler behavior can be pinned to a fixed
	// instant in tests.
	now func() time.Time

	// In-memory caches for the computed view responses. The views are pure
	// functions of (catalog, day) so a short TTL is purely a CPU saver for
	// chatty clients.
	viewMu    sync.RWMutex
	viewCache map[string]viewCacheEntry
}

type viewCacheEntry struct {
	resp      any
	updatedAt time.Time
}

const viewCacheTTL = 30 * time.Second

// embeddedStatic contains the exported web UI build.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, cat *catalog.Catalog, db *store.Store) *Server {
	s := &Server{
		cfg:       cfg,
		cat:       cat,
		db:        db,
		mux:       http.NewServeMux(),
		now:       time.Now,
		viewCache: make(map[string]viewCacheEntry),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// 빈 사용자명 또는 비밀번호가 설정된 경우에는 비활성화로 취급한다.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health 는 항상 무인증으로 노출한다.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="GameCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/daily", s.handleDaily)
	s.mux.HandleFunc("/api/weekly", s.handleWeekly)
	s.mux.HandleFunc("/api/monthly", s.handleMonthly)
	s.mux.HandleFunc("/api/resets", s.handleResets)
	s.mux.HandleFunc("/api/completions", s.handleCompletions)
	s.mux.HandleFunc("/api/feed.ics", s.handleFeed)
	s.mux.HandleFunc("/preview.png", s.handlePreview)

	// Static UI (embedded). All non-/api/* paths fall back to this handler.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requestDay resolves the ?day= parameter, defaulting to the current game
// day. The boolean is false when the parameter is present but malformed.
func (s *Server) requestDay(r *http.Request) (model.CivilDate, bool) {
	raw := r.URL.Query().Get("day")
	if raw == "" {
		return gameclock.GameDay(s.now()), true
	}
	d, err := model.ParseCivilDate(raw)
	if err != nil {
		return model.CivilDate{}, false
	}
	return d, true
}

// cachedView returns the cached response under key or computes, stores and
// returns a fresh one.
func (s *Server) cachedView(key string, build func() any) any {
	now := s.now()

	s.viewMu.RLock()
	e, ok := s.viewCache[key]
	s.viewMu.RUnlock()
	if ok && now.Sub(e.updatedAt) < viewCacheTTL {
		return e.resp
	}

	resp := build()

	s.viewMu.Lock()
	s.viewCache[key] = viewCacheEntry{resp: resp, updatedAt: now}
	s.viewMu.Unlock()
	return resp
}

// handleDaily returns the reset-to-reset schedule of one game day.
//
// GET /api/daily?day=2025-10-09
//   - day: 게임 기준 날짜 (기본: 오늘의 게임 날짜)
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	day, ok := s.requestDay(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
		return
	}

	resp := s.cachedView("daily:"+day.String(), func() any {
		return timeline.Day(s.cat, day)
	})
	writeJSON(w, http.StatusOK, resp)
}

// handleWeekly returns the Monday-aligned week view containing a game day.
//
// GET /api/weekly?day=2025-10-09&hide_all_week=1&limited_only=1
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	day, ok := s.requestDay(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
		return
	}

	q := r.URL.Query()
	opts := timeline.WeekOptions{
		HideAllWeek: parseBool(q.Get("hide_all_week")),
		LimitedOnly: parseBool(q.Get("limited_only")),
	}

	key := "weekly:" + gameclock.WeekStart(day).String() +
		":" + strconv.FormatBool(opts.HideAllWeek) +
		":" + strconv.FormatBool(opts.LimitedOnly)
	resp := s.cachedView(key, func() any {
		return timeline.Week(s.cat, day, opts)
	})
	writeJSON(w, http.StatusOK, resp)
}

// handleMonthly returns the month view of date-bounded events.
//
// GET /api/monthly?year=2025&month=10 (기본: 오늘의 게임 날짜가 속한 달)
func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	today := gameclock.GameDay(s.now())
	q := r.URL.Query()
	year := parseIntDefault(q.Get("year"), today.Year)
	month := parseIntDefault(q.Get("month"), int(today.Month))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month, want 1..12")
		return
	}

	key := "monthly:" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
	resp := s.cachedView(key, func() any {
		return timeline.Month(s.cat, year, time.Month(month))
	})
	writeJSON(w, http.StatusOK, resp)
}

// resetsResponse is the JSON response shape for /api/resets.
type resetsResponse struct {
	ServerTime time.Time       `json:"server_time"`
	GameTime   time.Time       `json:"game_time"`
	GameDay    model.CivilDate `json:"game_day"`

	Daily    resetDTO `json:"daily"`
	Weekly   resetDTO `json:"weekly"`
	BiWeekly resetDTO `json:"bi_weekly"`
}

type resetDTO struct {
	At        time.Time `json:"at"`
	Countdown string    `json:"countdown"`
}

// handleResets returns the next daily, weekly and bi-weekly reset instants
// together with formatted countdowns. Never cached: the countdowns are the
// whole point.
func (s *Server) handleResets(w http.ResponseWriter, _ *http.Request) {
	now := s.now().UTC()

	daily := gameclock.NextDailyReset(now)
	weekly := gameclock.NextWeeklyReset(now)
	biweekly := gameclock.NextBiWeeklyReset(now)

	writeJSON(w, http.StatusOK, resetsResponse{
		ServerTime: now,
		GameTime:   gameclock.GameTime(now),
		GameDay:    gameclock.GameDay(now),
		Daily: resetDTO{
			At:        daily,
			Countdown: gameclock.FormatDuration(daily.Sub(now)),
		},
		Weekly: resetDTO{
			At:        weekly,
			Countdown: gameclock.FormatDurationDays(weekly.Sub(now)),
		},
		BiWeekly: resetDTO{
			At:        biweekly,
			Countdown: gameclock.FormatDurationDays(biweekly.Sub(now)),
		},
	})
}

// toggleRequest is the POST body for /api/completions.
type toggleRequest struct {
	Event         string `json:"event"`
	OccurrenceKey string `json:"occurrence_key,omitempty"`
}

// completionsResponse is the JSON response shape for /api/completions.
type completionsResponse struct {
	GameDay     model.CivilDate    `json:"game_day"`
	Completions []store.Completion `json:"completions"`
}

// handleCompletions manages the per-day completion checklist.
//
//	GET    /api/completions?day=...          체크된 항목 목록
//	POST   /api/completions?day=...          {event, occurrence_key} 토글
//	DELETE /api/completions?day=...          해당 날짜 전체 초기화
func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, ok := s.requestDay(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := s.db.Completed(ctx, day)
		if err != nil {
			appLog.Error("completions list failed", err, "day", day.String())
			writeError(w, http.StatusInternalServerError, "failed to list completions")
			return
		}
		writeJSON(w, http.StatusOK, completionsResponse{GameDay: day, Completions: list})

	case http.MethodPost:
		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Event == "" {
			writeError(w, http.StatusBadRequest, "invalid body, want {event, occurrence_key}")
			return
		}
		if _, ok := s.cat.ByName(req.Event); !ok {
			writeError(w, http.StatusNotFound, "unknown event")
			return
		}
		done, err := s.db.Toggle(ctx, day, req.Event, req.OccurrenceKey)
		if err != nil {
			appLog.Error("completion toggle failed", err, "event", req.Event, "day", day.String())
			writeError(w, http.StatusInternalServerError, "failed to toggle completion")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event": req.Event, "completed": done})

	case http.MethodDelete:
		if err := s.db.ResetDay(ctx, day); err != nil {
			appLog.Error("completion reset failed", err, "day", day.String())
			writeError(w, http.StatusInternalServerError, "failed to reset completions")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleFeed serves the catalog as an iCalendar document.
func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	cal := feed.Calendar(s.cat, gameclock.GameDay(s.now()))

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Cache-Control", "max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		appLog.Error("failed to write feed response", err)
	}
}

// handlePreview serves the last rendered PNG snapshot from disk.
// http.ServeFile 가 파일 존재/권한 문제에 대해 적절한 상태코드를 반환해 준다.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.SnapshotPath)
}

// staticFileServer returns an http.Handler that serves the embedded UI from
// internal/web/static.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// 절대 /api/* 요청은 정적 UI에서 서빙하지 않는다.
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

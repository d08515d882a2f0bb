// Package control is the mixer's HTTP command surface (chi + cors + rate
// limiting): any caller thread may issue a command over POST /api/play,
// POST /api/stop, POST /api/master-volume, GET /api/stats, a streaming
// GET /api/stats/ws, and GET /metrics.
package control

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gomixer/internal/mixer"
	"gomixer/internal/source"
)

// SoundRegistry resolves a sound name to a preloaded AudioSource. The
// control API never decodes files itself; whatever owns the mixer loads
// sources up front and registers them here.
type SoundRegistry struct {
	mu      sync.RWMutex
	sources map[string]*source.AudioSource
}

// NewSoundRegistry creates an empty registry.
func NewSoundRegistry() *SoundRegistry {
	return &SoundRegistry{sources: make(map[string]*source.AudioSource)}
}

// Register names an AudioSource so it becomes playable through /play.
func (r *SoundRegistry) Register(name string, src *source.AudioSource) {
	r.mu.Lock()
	r.sources[name] = src
	r.mu.Unlock()
}

func (r *SoundRegistry) lookup(name string) (*source.AudioSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[name]
	return src, ok
}

// RouterConfig bundles the dependencies NewRouter needs as a
// dependency-injection shape, so the router stays constructible (and
// testable with httptest). When RateLimiter is nil, NewRouter creates one,
// which starts that limiter's background cleanup goroutine.
type RouterConfig struct {
	Mixer       *mixer.Mixer
	Sounds      *SoundRegistry
	RateLimiter *IPRateLimiter
	CORSOrigins []string
}

// NewRouter builds the control API's chi.Mux. It opens no listeners; its
// only goroutine is the cleanup loop of the rate limiter it creates when
// cfg.RateLimiter is nil.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	rl := cfg.RateLimiter
	if rl == nil {
		rl = NewIPRateLimiter(DefaultRateLimitConfig)
	}

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &handlers{mixer: cfg.Mixer, sounds: cfg.Sounds}

	r.Route("/api", func(r chi.Router) {
		r.With(rl.Middleware).Post("/play", h.handlePlay)
		r.Post("/stop", h.handleStop)
		r.Post("/master-volume", h.handleMasterVolume)
		r.Get("/stats", h.handleStats)
		r.Get("/stats/ws", h.handleStatsWS)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

type handlers struct {
	mixer  *mixer.Mixer
	sounds *SoundRegistry
}

type playRequest struct {
	Name             string   `json:"name"`
	Channel          *int     `json:"channel"` // nil = any free channel
	Volume           *float32 `json:"volume"`
	Pan              float32  `json:"pan"`
	DelayBeforePlay  float32  `json:"delayBeforePlay"`
	StartTimeSecs    float32  `json:"startTimeSecs"`
	LoopCount        uint32   `json:"loopCount"`
	CrossFadeInSecs  float32  `json:"crossFadeInSecs"`
	CrossFadeOutSecs *float32 `json:"crossFadeOutSecs"`
	FadeInSecs       float32  `json:"fadeInSecs"`
}

func (h *handlers) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	src, ok := h.sounds.lookup(req.Name)
	if !ok {
		writeError(w, "unknown sound: "+req.Name, http.StatusNotFound)
		return
	}

	opts := mixer.DefaultPlayOptions()
	if req.Channel != nil {
		opts.Channel = *req.Channel
	}
	if req.Volume != nil {
		opts.Volume = *req.Volume
	}
	opts.Pan = req.Pan
	opts.DelayBeforePlay = req.DelayBeforePlay
	opts.StartTimeSecs = req.StartTimeSecs
	if req.LoopCount != 0 {
		opts.LoopCount = req.LoopCount
	}
	opts.CrossFadeInSecs = req.CrossFadeInSecs
	if req.CrossFadeOutSecs != nil {
		opts.CrossFadeOutSecs = *req.CrossFadeOutSecs
	}
	opts.FadeInSecs = req.FadeInSecs

	h.mixer.Play(src, opts)
	writeJSON(w, map[string]any{"ok": true})
}

type stopRequest struct {
	Channel     int     `json:"channel"`
	FadeOutSecs float32 `json:"fadeOutSecs"`
}

func (h *handlers) handleStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.mixer.Stop(req.Channel, req.FadeOutSecs)
	writeJSON(w, map[string]any{"ok": true})
}

type masterVolumeRequest struct {
	Volume float32 `json:"volume"`
}

func (h *handlers) handleMasterVolume(w http.ResponseWriter, r *http.Request) {
	var req masterVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.mixer.SetMasterVolume(req.Volume)
	writeJSON(w, map[string]any{"ok": true})
}

func (h *handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.mixer.Stats()
	writeJSON(w, map[string]any{
		"activeChannels":        stats.ActiveChannels,
		"framesElapsed":         stats.FramesElapsed,
		"underrunCount":         stats.UnderrunCount,
		"errored":               stats.Errored,
		"lastError":             stats.LastError,
		"playbackTimeInSeconds": h.mixer.PlaybackTimeInSeconds(),
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[control] writeJSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/skema-app/skema/internal/assistant"
	"github.com/skema-app/skema/internal/config"
	"github.com/skema-app/skema/internal/health"
	"github.com/skema-app/skema/internal/logging"
	"github.com/skema-app/skema/internal/openai"
	"github.com/skema-app/skema/internal/search"
	"github.com/skema-app/skema/internal/store"
)

func main() {
	log.Println("skema - productivity assistant backend")

	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()
	logging.Info("main", "Store open at %s", cfg.DatabasePath)

	deps := &assistant.Dependencies{
		Store:  st,
		Search: search.NewClient(cfg.SerperAPIKey),
	}
	registry := assistant.NewRegistry()
	assistant.RegisterAll(registry, deps)
	logging.Info("main", "Registered %d tools", len(registry.Names()))

	memory := assistant.NewConversationMemory(cfg.MemoryCap, cfg.MemoryStaleness, cfg.MemorySweepPeriod)
	memory.Start()
	defer memory.Stop()

	var client assistant.ModelClient
	var transcriber *openai.Client
	if cfg.OpenAIAPIKey != "" {
		oa := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.AIModel, cfg.AIMaxTokens)
		client = oa
		transcriber = oa
		logging.Info("main", "Model capability configured (%s)", cfg.AIModel)
	} else {
		logging.Info("main", "No OPENAI_API_KEY set - assistant will report unavailable")
	}

	handler := assistant.NewHandler(client, registry, memory, deps)
	monitor := health.NewMonitor()

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: routes(handler, st, monitor, transcriber),
	}

	// Periodic one-line status log.
	statusStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-statusStop:
				return
			case <-ticker.C:
				snap := monitor.Snapshot()
				logging.Info("status", "cpu=%.1f%% rss=%dMB goroutines=%d uptime=%ds",
					snap.CPUPercent, snap.RSSBytes/(1024*1024), snap.Goroutines, snap.UptimeSeconds)
			}
		}
	}()

	go func() {
		logging.Info("main", "Listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("[main] Shutting down...")
	close(statusStop)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("main", "server shutdown: %v", err)
	}
	log.Println("[main] Goodbye")
}

// routes builds the thin HTTP surface in front of the assistant core.
// Authentication is out of scope here: the caller identity arrives in the
// X-User-ID header, set by the gateway in front of this service.
// transcriber may be nil when no API key is configured.
func routes(h *assistant.Handler, st *store.Store, monitor *health.Monitor, transcriber *openai.Client) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ai/conversation", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}

		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		start := time.Now()
		result := h.ProcessMessage(r.Context(), actor, req.Message)
		execMS := int(time.Since(start).Milliseconds())

		// Audit the literal command, not the augmented prompt text.
		if err := st.RecordCommand(&store.AICommand{
			UserID:      actor.UserID,
			Command:     req.Message,
			Response:    result.Response,
			Success:     result.Success,
			Error:       result.Error,
			ExecutionMS: execMS,
		}); err != nil {
			logging.Error("http", "failed to audit command for %s: %v", actor.UserID, err)
		}

		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST /api/ai/conversation/clear", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		h.ClearConversation(actor.UserID)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	mux.HandleFunc("GET /api/ai/conversation/stats", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		stats, _ := h.ConversationStats(actor.UserID)
		writeJSON(w, http.StatusOK, stats)
	})

	mux.HandleFunc("POST /api/ai/transcribe", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		if transcriber == nil {
			writeError(w, http.StatusServiceUnavailable, "transcription is not available")
			return
		}

		file, header, err := r.FormFile("audio_file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "audio_file is required")
			return
		}
		defer file.Close()

		if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "audio/") {
			writeError(w, http.StatusBadRequest, "file must be an audio file")
			return
		}

		start := time.Now()
		transcript, err := transcriber.Transcribe(r.Context(), header.Filename, file)
		if err != nil {
			logging.Error("http", "transcription failed for %s: %v", actor.UserID, err)
			writeError(w, http.StatusInternalServerError, "failed to transcribe audio")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"transcript":        transcript,
			"execution_time_ms": int(time.Since(start).Milliseconds()),
			"success":           true,
		})
	})

	mux.HandleFunc("GET /api/ai/suggestions/quick", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.QuickSuggestions())
	})

	mux.HandleFunc("GET /api/ai/stats", func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing X-User-ID header")
			return
		}
		stats, err := st.CommandStats(actor.UserID)
		if err != nil {
			logging.Error("http", "command stats for %s: %v", actor.UserID, err)
			writeError(w, http.StatusInternalServerError, "failed to load stats")
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, monitor.Snapshot())
	})

	return mux
}

func actorFrom(r *http.Request) (assistant.Actor, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return assistant.Actor{}, false
	}
	name := r.Header.Get("X-User-Name")
	if name == "" {
		name = userID
	}
	return assistant.Actor{UserID: userID, DisplayName: name}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("http", "failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

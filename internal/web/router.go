package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"LivingHistory/server/internal/characters"
	"LivingHistory/server/internal/session"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// CORS middleware
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "300")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

func NewRouter(controller *session.Controller, charService *characters.Service, hub *EventHub, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(logger))
	r.Use(corsMiddleware)

	story := NewStoryHandlers(controller, logger)
	chars := NewCharacterHandlers(charService, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"service": "living-history",
			"clients": hub.ClientCount(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/story", func(r chi.Router) {
			r.Post("/start", story.StartStory)
			r.Post("/choose", story.Choose)
			r.Post("/save", story.SaveStory)
			r.Get("/list", story.ListStorylines)
			r.Get("/progress", story.Progress)
			r.Get("/stats", story.PlayerStats)
			r.Get("/relationships", story.Relationships)
			r.Get("/achievements", story.Achievements)
			r.Post("/{storylineID}/resume", story.ResumeStory)
			r.Delete("/{storylineID}", story.DeleteStoryline)
			r.Get("/{storylineID}/transcript", story.Transcript)
			r.Get("/{storylineID}/nodes/{nodeID}/visuals", story.NodeVisuals)
		})

		r.Route("/characters", func(r chi.Router) {
			r.Get("/", chars.Roster)
			r.Get("/custom", chars.ListCustom)
			r.Post("/custom", chars.CreateCustom)
			r.Get("/{characterID}", chars.Character)
		})
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:   uuid.NewString(),
			Conn: conn,
			Send: make(chan []byte, 256),
			Hub:  hub,
		}
		hub.register <- client
		go client.readPump()
	})

	return r
}

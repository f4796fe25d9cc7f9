// Package server provides HTTP server initialization and lifecycle
// management for the trust-graph API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/roamsocial/trustgraph/internal/booking"
	"github.com/roamsocial/trustgraph/internal/config"
	"github.com/roamsocial/trustgraph/internal/engine"
	"github.com/roamsocial/trustgraph/internal/notify"
	"github.com/roamsocial/trustgraph/internal/storage"
	"github.com/roamsocial/trustgraph/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with
// port 0) and the WebSocketHub so callers can broadcast directly.
func Start(ctx context.Context, cfg *config.Config, relStore storage.RelationshipStore, contentStore storage.ContentStore) (string, *handlers.WebSocketHub) {
	mux := http.NewServeMux()

	// Engine and services
	eng := engine.New(relStore)
	pipeline := engine.NewFilterPipeline(eng, contentStore, relStore)
	hub := notify.NewHub()
	bookingSvc := booking.NewService(eng, contentStore, hub)

	// WebSocket hub, fed from the notification hub
	wsHub := handlers.NewWebSocketHub()
	go wsHub.Run()
	stopBridge := wsHub.Bridge(hub)

	// Rate limiter from configured limits
	rateLimiter := handlers.NewRateLimiter(cfg.Limits.RequestsPerSecond, cfg.Limits.Burst)

	// Handlers
	recHandlers := handlers.NewRecommendationHandlers(contentStore, eng, pipeline)
	connHandlers := handlers.NewConnectionHandlers(eng)
	interactionHandlers := handlers.NewInteractionHandlers(relStore, eng, hub)
	edgeHandlers := handlers.NewEdgeHandlers(relStore, hub)
	bookingHandlers := handlers.NewBookingHandlers(bookingSvc)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/recommendations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			recHandlers.List(w, r)
		case http.MethodPost:
			recHandlers.Create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/recommendations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			recHandlers.Get(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/members/{id}/connection", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			connHandlers.GetConnection(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/interactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			interactionHandlers.LogInteraction(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/edges", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			edgeHandlers.CreateEdge(w, r)
		case http.MethodPatch:
			edgeHandlers.UpdateEdgeStatus(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/resources/{id}/eligibility", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			bookingHandlers.GetEligibility(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/resources/{id}/bookings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			bookingHandlers.CreateBooking(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health endpoint — no auth required, used by monitoring
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required - origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	// Create server with security timeouts
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		stopBridge()
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}

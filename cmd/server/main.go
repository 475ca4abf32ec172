package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/admin"
	"github.com/devhive/ai-chat-gateway/internal/auth"
	"github.com/devhive/ai-chat-gateway/internal/chat"
	"github.com/devhive/ai-chat-gateway/internal/config"
	"github.com/devhive/ai-chat-gateway/internal/db"
	"github.com/devhive/ai-chat-gateway/internal/gate"
	"github.com/devhive/ai-chat-gateway/internal/maintenance"
	"github.com/devhive/ai-chat-gateway/internal/profile"
	"github.com/devhive/ai-chat-gateway/internal/quota"
	"github.com/devhive/ai-chat-gateway/internal/ratelimit"
	"github.com/devhive/ai-chat-gateway/internal/server"
	"github.com/devhive/ai-chat-gateway/internal/usage"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	loc, err := time.LoadLocation(cfg.QuotaTimezone)
	if err != nil {
		log.Fatal("Invalid quota timezone:", err)
	}

	// Initialize database
	database, err := db.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Admission components
	planQuota, err := quota.NewPlanQuota(cfg.RedisURL, loc)
	if err != nil {
		log.Fatal("Failed to initialize plan quota:", err)
	}
	defer planQuota.Close()

	anonQuota := quota.NewAnonQuota(cfg.AnonDailyLimit, cfg.AnonStoreCapacity, loc)
	limiter := ratelimit.NewRateLimiter()
	accessGate := gate.NewAccessGate(database)

	// Chat pipeline
	backend := chat.NewBackendClient(cfg.BackendURL, time.Duration(cfg.BackendTimeoutSeconds)*time.Second)
	recorder := usage.NewRecorder(database)
	orchestrator := chat.NewOrchestrator(backend, recorder)
	resolver := profile.NewResolver(database)
	aggregator := usage.NewAggregator(database, loc)

	// Maintenance routing, refreshed by an explicit poller
	maintRouter := maintenance.NewRouter()
	poller := maintenance.NewPoller(maintRouter, database, 30*time.Second)
	pollCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()
	go poller.Run(pollCtx)

	// Initialize router
	router := mux.NewRouter()

	// Auth middleware
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)

	// Public routes
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/auth/token", tokenHandler(database, cfg.JWTSecret)).Methods("POST")

	// Admin routes behind JWT auth
	adminHandler := admin.NewAdminHandler(database, maintRouter, aggregator)
	adminRouter := mux.NewRouter()
	adminHandler.RegisterRoutes(adminRouter)
	router.PathPrefix("/admin/").Handler(authMiddleware.Authenticate(adminRouter))

	// Gateway routes
	gatewayHandler := server.NewHandler(accessGate, limiter, planQuota, anonQuota, resolver, orchestrator, backend)
	gatewayHandler.RegisterRoutes(router)

	// Start server, maintenance routing evaluated at the edge
	log.Printf("Server starting on port %s", cfg.ServerPort)
	log.Printf("Admin API available at /admin/*")
	log.Printf("Gateway API available at /api/*")
	if err := http.ListenAndServe(":"+cfg.ServerPort, maintRouter.Middleware(router)); err != nil {
		log.Fatal("Server failed:", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": "1.0.0",
	})
}

func tokenHandler(database *db.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SiteKey string `json:"site_key"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Failed to decode request: %v", err)
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		sk, err := database.GetSiteKey(r.Context(), req.SiteKey)
		if err != nil {
			log.Printf("Site key lookup failed: %v", err)
			http.Error(w, "Invalid site key", http.StatusUnauthorized)
			return
		}

		token, err := auth.GenerateToken(sk.ID, sk.TenantID, sk.Key, jwtSecret)
		if err != nil {
			log.Printf("Token generation failed: %v", err)
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"token": token,
		})
	}
}

package admin

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/devhive/ai-chat-gateway/internal/auth"
	"github.com/devhive/ai-chat-gateway/internal/db"
	"github.com/devhive/ai-chat-gateway/internal/maintenance"
	"github.com/devhive/ai-chat-gateway/internal/models"
	"github.com/devhive/ai-chat-gateway/internal/usage"
	"github.com/gorilla/mux"
)

type AdminHandler struct {
	db         *db.DB
	router     *maintenance.Router
	aggregator *usage.Aggregator
}

func NewAdminHandler(database *db.DB, router *maintenance.Router, aggregator *usage.Aggregator) *AdminHandler {
	return &AdminHandler{db: database, router: router, aggregator: aggregator}
}

func (h *AdminHandler) RegisterRoutes(router *mux.Router) {
	// Site key read path
	router.HandleFunc("/admin/sitekeys", h.ListSiteKeys).Methods("GET")
	router.HandleFunc("/admin/sitekeys/{id}", h.GetSiteKey).Methods("GET")
	router.HandleFunc("/admin/sitekeys/{id}/rotate", h.RotateSiteKey).Methods("POST")

	// Maintenance configuration
	router.HandleFunc("/admin/maintenance", h.GetMaintenance).Methods("GET")
	router.HandleFunc("/admin/maintenance", h.PutMaintenance).Methods("PUT")

	// Prompt profile read path
	router.HandleFunc("/admin/profiles", h.ListProfiles).Methods("GET")

	// Reporting
	router.HandleFunc("/admin/usage/stats", h.UsageStats).Methods("GET")
}

func (h *AdminHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID, _ := strconv.ParseInt(q.Get("tenant_id"), 10, 64)
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	const pageSize = 20

	profiles, err := h.db.SearchProfiles(r.Context(), tenantID, q.Get("keyword"), pageSize, (page-1)*pageSize)
	if err != nil {
		http.Error(w, "Failed to list profiles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profiles)
}

func (h *AdminHandler) ListSiteKeys(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := strconv.ParseInt(r.URL.Query().Get("tenant_id"), 10, 64)

	keys, err := h.db.ListSiteKeys(r.Context(), tenantID)
	if err != nil {
		http.Error(w, "Failed to list site keys", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(keys)
}

func (h *AdminHandler) GetSiteKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid site key ID", http.StatusBadRequest)
		return
	}

	sk, err := h.db.GetSiteKeyByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Site key not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load site key", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sk)
}

func (h *AdminHandler) RotateSiteKey(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid site key ID", http.StatusBadRequest)
		return
	}

	newKey, err := generateKeyString()
	if err != nil {
		http.Error(w, "Failed to generate key", http.StatusInternalServerError)
		return
	}

	updatedBy := "admin"
	if claims, ok := auth.GetClaimsFromContext(r.Context()); ok {
		updatedBy = claims.SiteKey
	}

	if err := h.db.RotateSiteKey(r.Context(), id, newKey, updatedBy); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, "Site key not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to rotate key", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"key":    newKey,
		"status": "rotated",
	})
}

func (h *AdminHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.db.GetMaintenanceConfig(r.Context())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			cfg = &models.MaintenanceConfig{}
		} else {
			http.Error(w, "Failed to load maintenance config", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cfg)
}

// PutMaintenance stores the new configuration and swaps it into the
// live router in the same request, so the poll interval only matters
// for other replicas.
func (h *AdminHandler) PutMaintenance(w http.ResponseWriter, r *http.Request) {
	var cfg models.MaintenanceConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.db.PutMaintenanceConfig(r.Context(), &cfg); err != nil {
		slog.Error("maintenance config write failed", "err", err)
		http.Error(w, "Failed to store maintenance config", http.StatusInternalServerError)
		return
	}
	h.router.SetConfig(&cfg)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&cfg)
}

func (h *AdminHandler) UsageStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		http.Error(w, "Invalid from date", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		http.Error(w, "Invalid to date", http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, "to date precedes from date", http.StatusBadRequest)
		return
	}

	tenantID, _ := strconv.ParseInt(q.Get("tenant_id"), 10, 64)
	profileID, _ := strconv.ParseInt(q.Get("prompt_profile_id"), 10, 64)

	result, err := h.aggregator.Query(r.Context(), usage.StatsQuery{
		TenantID:        tenantID,
		SiteKey:         q.Get("site_key"),
		PromptProfileID: profileID,
		Period:          models.ParseStatsPeriodOr(q.Get("period"), models.PeriodDay),
		From:            from,
		To:              to,
	})
	if err != nil {
		slog.Error("usage stats query failed", "err", err)
		http.Error(w, "Failed to query usage stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func generateKeyString() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

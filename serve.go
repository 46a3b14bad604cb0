package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"mission-planner/mission"
)

var (
	// missionLoads counts mission loads by outcome
	missionLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_mission_loads_total",
		Help: "Mission loads by outcome",
	}, []string{"outcome"})

	// routeRequests counts route computations by outcome
	routeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_route_requests_total",
		Help: "Route requests by outcome",
	}, []string{"outcome"})

	// routeDuration tracks route planning latency
	routeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_route_duration_seconds",
		Help:    "Route planning duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	})

	// searchRequests counts coverage searches by outcome
	searchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_search_requests_total",
		Help: "Coverage search requests by outcome",
	}, []string{"outcome"})

	// searchDuration tracks coverage search latency
	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_search_duration_seconds",
		Help:    "Coverage search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	})
)

type RouteRequest struct {
	Start mission.Coordinate `json:"start"`
	End   mission.Coordinate `json:"end"`
}

type RouteResponse struct {
	Path           []mission.Coordinate `json:"path"`
	Success        bool                 `json:"success"`
	Message        string               `json:"message,omitempty"`
	DistanceMeters float64              `json:"distanceMeters,omitempty"`
}

type LoadMissionRequest struct {
	MissionFile  string   `json:"missionFile"`
	ZonesFile    string   `json:"zonesFile,omitempty"`
	SafetyMargin *float64 `json:"safetyMargin,omitempty"`
	Force        bool     `json:"force,omitempty"` // Set to true to replace a loaded mission
}

type SearchPathRequest struct {
	CellSize   float64 `json:"cellSize,omitempty"`   // Cell side in meters
	ViewRadius int     `json:"viewRadius,omitempty"` // View radius in cells
}

// planner holds the service state: the loaded mission and the config
// defaults requests fall back to.
type planner struct {
	cfg *Config

	mu      sync.RWMutex
	mission *mission.Mission
}

func newPlanner(cfg *Config) *planner {
	return &planner{cfg: cfg}
}

func (p *planner) current() *mission.Mission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mission
}

func (p *planner) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/loadMission", corsMiddleware(p.loadMissionHandler))
	mux.HandleFunc("/route", corsMiddleware(p.routeHandler))
	mux.HandleFunc("/searchPath", corsMiddleware(p.searchPathHandler))
	mux.HandleFunc("/health", corsMiddleware(p.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// POST /loadMission - Load a mission data file and build its planner
func (p *planner) loadMissionHandler(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("request_id", uuid.NewString(), "handler", "loadMission")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoadMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.MissionFile == "" {
		req.MissionFile = p.cfg.MissionFile
	}
	if req.MissionFile == "" {
		http.Error(w, "missionFile is required", http.StatusBadRequest)
		return
	}

	p.mu.RLock()
	alreadyLoaded := p.mission != nil
	p.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if alreadyLoaded && !req.Force {
		logger.Warn("mission already loaded", "file", req.MissionFile)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "mission already loaded",
			"message": "A mission is already loaded. Set 'force: true' to replace it.",
		})
		return
	}

	margin := p.cfg.SafetyMargin
	if req.SafetyMargin != nil {
		margin = *req.SafetyMargin
	}
	zonesFile := req.ZonesFile
	if zonesFile == "" {
		zonesFile = p.cfg.ZonesFile
	}

	m, err := buildMission(req.MissionFile, zonesFile, margin, p.cfg.SimplifyTolerance)
	if err != nil {
		missionLoads.WithLabelValues("failure").Inc()
		logger.Error("mission load failed", "file", req.MissionFile, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	p.mu.Lock()
	p.mission = m
	p.mu.Unlock()

	missionLoads.WithLabelValues("success").Inc()
	logger.Info("mission loaded", "file", req.MissionFile,
		"waypoints", len(m.Plan.Waypoints),
		"boundary_vertices", len(m.Boundary),
		"zones", len(m.Zones),
		"safety_margin_meters", margin)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":            true,
		"waypoints":          len(m.Plan.Waypoints),
		"boundaryVertices":   len(m.Boundary),
		"zones":              len(m.Zones),
		"safetyMarginMeters": margin,
	})
}

// POST /route - Plan a boundary-respecting route between two coordinates
func (p *planner) routeHandler(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("request_id", uuid.NewString(), "handler", "route")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m := p.current()
	if m == nil {
		logger.Warn("route requested before mission load")
		http.Error(w, "Mission not loaded. Call /loadMission first", http.StatusBadRequest)
		return
	}

	logger.Info("planning route",
		"start_lat", req.Start.Latitude, "start_lon", req.Start.Longitude,
		"end_lat", req.End.Latitude, "end_lon", req.End.Longitude)

	timer := prometheus.NewTimer(routeDuration)
	route, err := m.RouteBetween(req.Start, req.End)
	timer.ObserveDuration()

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		routeRequests.WithLabelValues("failure").Inc()
		logger.Warn("route planning failed", "error", err)
		json.NewEncoder(w).Encode(RouteResponse{Success: false, Message: err.Error()})
		return
	}

	routeRequests.WithLabelValues("success").Inc()
	logger.Info("route planned",
		"points", len(route.Points), "distance_meters", route.DistanceMeters)
	json.NewEncoder(w).Encode(RouteResponse{
		Path:           route.Points,
		Success:        true,
		DistanceMeters: route.DistanceMeters,
	})
}

// POST /searchPath - Plan a coverage route over the search grid
func (p *planner) searchPathHandler(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("request_id", uuid.NewString(), "handler", "searchPath")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CellSize == 0 {
		req.CellSize = p.cfg.CellSize
	}
	if req.ViewRadius == 0 {
		req.ViewRadius = p.cfg.ViewRadius
	}

	m := p.current()
	if m == nil {
		logger.Warn("coverage requested before mission load")
		http.Error(w, "Mission not loaded. Call /loadMission first", http.StatusBadRequest)
		return
	}

	logger.Info("planning coverage",
		"cell_size_meters", req.CellSize, "view_radius_cells", req.ViewRadius)

	timer := prometheus.NewTimer(searchDuration)
	route, err := m.PlanSearch(req.CellSize, req.ViewRadius)
	timer.ObserveDuration()

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		searchRequests.WithLabelValues("failure").Inc()
		logger.Warn("coverage planning failed", "error", err)
		json.NewEncoder(w).Encode(RouteResponse{Success: false, Message: err.Error()})
		return
	}

	searchRequests.WithLabelValues("success").Inc()
	logger.Info("coverage planned",
		"points", len(route.Points), "distance_meters", route.DistanceMeters)
	json.NewEncoder(w).Encode(RouteResponse{
		Path:           route.Points,
		Success:        true,
		DistanceMeters: route.DistanceMeters,
	})
}

// GET /health - Health check endpoint
func (p *planner) healthHandler(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	m := p.mission
	p.mu.RUnlock()

	status := "ready"
	waypoints := 0
	boundaryVertices := 0
	if m != nil {
		waypoints = len(m.Plan.Waypoints)
		boundaryVertices = len(m.Boundary)
	} else {
		status = "waiting for mission"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":           status,
		"hasMission":       m != nil,
		"waypoints":        waypoints,
		"boundaryVertices": boundaryVertices,
	})
}

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mission planner HTTP service",
	Long: `Serve route and coverage planning over HTTP.

The service loads the configured mission file at startup when one is
set; otherwise it waits for POST /loadMission. Planned paths come back
as WGS84 coordinate lists with the total distance in meters.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfigWithDefaults(configPath())
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	p := newPlanner(cfg)
	if cfg.MissionFile != "" {
		m, err := buildMission(cfg.MissionFile, cfg.ZonesFile, cfg.SafetyMargin, cfg.SimplifyTolerance)
		if err != nil {
			slog.Warn("no mission loaded at startup", "file", cfg.MissionFile, "error", err)
		} else {
			p.mission = m
			slog.Info("mission loaded", "file", cfg.MissionFile,
				"waypoints", len(m.Plan.Waypoints),
				"boundary_vertices", len(m.Boundary),
				"zones", len(m.Zones))
		}
	} else {
		slog.Info("no mission file configured, waiting for /loadMission")
	}

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: p.routes(),
	}

	go func() {
		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("mission planner listening", "addr", cfg.Listen)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tranchefi/duopool/internal/logger"
	"github.com/tranchefi/duopool/internal/pool"
	"github.com/tranchefi/duopool/internal/state"
	"github.com/tranchefi/duopool/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer handles HTTP requests for market data visualization
type WebServer struct {
	router *mux.Router
	engine *pool.Engine
	port   string
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, engine *pool.Engine) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router: mux.NewRouter(),
		engine: engine,
		port:   port,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/markets", ws.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{id}", ws.handleGetMarket).Methods("GET")
	api.HandleFunc("/markets/{id}/snapshots", ws.handleGetMarketSnapshots).Methods("GET")
	api.HandleFunc("/receipts", ws.handleGetReceipts).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := state.TestDBConnection() == nil

	response := map[string]interface{}{
		"status":       "ok",
		"timestamp":    time.Now().UTC(),
		"markets":      len(ws.engine.MarketIDs()),
		"db_connected": dbHealthy,
		"memory_mb":    memStats.Alloc / 1024 / 1024,
		"goroutines":   runtime.NumGoroutine(),
	}

	statusCode := http.StatusOK
	if !dbHealthy {
		response["status"] = "degraded"
	}
	ws.writeJSONResponse(w, statusCode, response)
}

// handleGetMarkets returns all markets
func (ws *WebServer) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	markets := ws.engine.ListMarkets()
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"markets": markets,
		"count":   len(markets),
	})
}

// handleGetMarket returns a single market by id
func (ws *WebServer) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.marketIDFromRequest(w, r)
	if !ok {
		return
	}

	market, err := ws.engine.GetMarket(id)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Market not found")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, market)
}

// handleGetMarketSnapshots returns recent persisted snapshots for a market
func (ws *WebServer) handleGetMarketSnapshots(w http.ResponseWriter, r *http.Request) {
	id, ok := ws.marketIDFromRequest(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	snapshots, err := state.GetRecentSnapshots(id, limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to retrieve market snapshots")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve snapshots")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
	})
}

// handleGetReceipts returns recent allocation receipts across all markets
func (ws *WebServer) handleGetReceipts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	receipts, err := state.GetRecentReceipts(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to retrieve allocation receipts")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve receipts")
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"receipts": receipts,
		"count":    len(receipts),
	})
}

func (ws *WebServer) marketIDFromRequest(w http.ResponseWriter, r *http.Request) (types.MarketID, bool) {
	vars := mux.Vars(r)
	raw, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid market ID")
		return 0, false
	}
	return types.MarketID(raw), true
}

// writeJSONResponse writes a JSON response with the given status code
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes a JSON error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	ws.writeJSONResponse(w, statusCode, map[string]string{"error": message})
}

// corsMiddleware adds CORS headers to all responses
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		webLogger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

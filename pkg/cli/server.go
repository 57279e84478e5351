package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	urfave "github.com/urfave/cli/v2"

	"github.com/clinsight/comorbid/pkg/data"
	"github.com/clinsight/comorbid/pkg/scoring"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 60
	serverPortDefault         = 8080
)

var (
	portFlag = &urfave.IntFlag{
		Name:  "port",
		Usage: "Port on which the server will listen",
		Value: serverPortDefault,
	}

	serverCmd = &urfave.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start a local HTTP scoring server",
		Action:  cmdStartServer,
		Flags: []urfave.Flag{
			portFlag,
			debugFlag,
		},
	}
)

func cmdStartServer(c *urfave.Context) error {
	cfg := getConfig(c)
	address := fmt.Sprintf("127.0.0.1:%d", c.Int(portFlag.Name))

	s := &http.Server{
		Addr:         address,
		Handler:      makeRouter(cfg.DB),
		ReadTimeout:  serverTimeoutSeconds * time.Second,
		WriteTimeout: serverTimeoutSeconds * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "address", address)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	<-done
	slog.Info("server stopping")

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func makeRouter(db *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("POST /api/v1/score", scoreHandler)
	mux.HandleFunc("GET /api/v1/cohorts", cohortsHandler(db))
	mux.HandleFunc("GET /api/v1/distribution", distributionHandler(db))
	return mux
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version})
}

// ScoreRequest is the POST /api/v1/score payload: a tabular dataset wire
// form of columns plus rows of cells.
type ScoreRequest struct {
	Method       string     `json:"method,omitempty"`
	WithCardArrh bool       `json:"with_cardarrh,omitempty"`
	Columns      []string   `json:"columns"`
	Rows         [][]string `json:"rows"`
}

// ScoreResponse carries one score per request row, in request order.
type ScoreResponse struct {
	Method       string `json:"method"`
	WithCardArrh bool   `json:"with_cardarrh"`
	Scores       []int  `json:"scores"`
}

func scoreHandler(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if req.Method == "" {
		req.Method = string(scoring.DefaultMethod)
	}
	m, err := scoring.ParseMethod(req.Method)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t := scoring.NewTable(req.Columns)
	for i, row := range req.Rows {
		if err := t.Append(row...); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("row %d: %w", i, err))
			return
		}
	}

	scores, err := scoring.Scores(t, m, req.WithCardArrh)
	if err != nil {
		writeError(w, scoringErrorStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, &ScoreResponse{
		Method:       string(m),
		WithCardArrh: req.WithCardArrh,
		Scores:       scores,
	})
}

func cohortsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		list, err := data.ListCohorts(db)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func distributionHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			writeError(w, http.StatusBadRequest, errors.New("name query parameter required"))
			return
		}

		method := r.URL.Query().Get("method")
		if method == "" {
			method = string(scoring.DefaultMethod)
		}
		m, err := scoring.ParseMethod(method)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		withCardArrh := r.URL.Query().Get("cardarrh") == "true"

		dist, err := data.GetScoreDistribution(db, name, m, withCardArrh)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, dist)
	}
}

// scoringErrorStatus maps the scorer's caller-input defects to 400s.
func scoringErrorStatus(err error) int {
	var schemaErr *scoring.SchemaError
	var domainErr *scoring.DomainError
	switch {
	case errors.As(err, &schemaErr),
		errors.As(err, &domainErr),
		errors.Is(err, scoring.ErrNoData),
		errors.Is(err, scoring.ErrUnknownMethod),
		errors.Is(err, scoring.ErrCardArrhUnsupported):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

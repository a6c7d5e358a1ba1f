package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"datachat/internal/app"
	"datachat/internal/httputil"
	"datachat/internal/llm"
	"datachat/internal/prompt"
	"datachat/internal/summary"
)

const (
	serviceName    = "Dataset Chat API"
	serviceVersion = "1.0.0"

	noDataResponse = "⚠️ **No Data Available**\n\nPlease upload a dataset first to analyze."
)

// visualKeywords flag queries that imply a chart/visualization intent.
var visualKeywords = []string{
	"visual", "chart", "graph", "plot", "create chart", "make chart",
	"draw", "show chart", "build chart",
}

type chatRequest struct {
	Query   string           `json:"query" validate:"required"`
	Name    string           `json:"name"`
	Data    []summary.Row    `json:"data"`
	Columns []summary.Column `json:"columns"`
	APIKey  string           `json:"api_key" validate:"required"`
}

type chatResponse struct {
	Response                      string `json:"response"`
	ShouldNavigateToVisualBuilder bool   `json:"shouldNavigateToVisualBuilder"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/chat", chatHandler(deps))
	r.Get("/health", httputil.HealthHandler(serviceName, serviceVersion))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		deps.Log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case s := <-sig:
			deps.Log.Info("shutting down", "signal", s.String())
		case <-ctx.Done():
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
	}
}

// chatHandler validates the request, summarizes the dataset, renders the
// prompt, performs one outbound generation call, and maps the result.
func chatHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.Fail(deps.Log, w, requiredFieldMessage(err), err, http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			req.Name = "Dataset"
		}

		// Nothing to analyze is guidance, not an error.
		if len(req.Data) == 0 {
			httputil.WriteJSON(w, http.StatusOK, chatResponse{Response: noDataResponse})
			return
		}

		deps.Log.Info("summarizing dataset", "rows", len(req.Data), "columns", len(req.Columns))
		sum := summary.Summarize(req.Data, req.Columns, req.Name)
		p := prompt.Build(req.Query, sum)

		answer, err := deps.LLM.Generate(r.Context(), req.APIKey, p)
		if err != nil {
			writeGenerateError(deps, w, err)
			return
		}
		deps.Log.Info("generation response received", "chars", len(answer))

		httputil.WriteJSON(w, http.StatusOK, chatResponse{
			Response:                      answer,
			ShouldNavigateToVisualBuilder: wantsVisualization(req.Query),
		})
	}
}

// requiredFieldMessage maps the first validation failure to the contract's
// literal error message; query is checked before the API key.
func requiredFieldMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "Query":
			return "Missing query parameter"
		case "APIKey":
			return "Missing API key"
		}
	}
	return "invalid payload"
}

// writeGenerateError maps generation failures onto the response contract:
// upstream statuses pass through, timeouts are 504, everything else is 500.
func writeGenerateError(deps app.Deps, w http.ResponseWriter, err error) {
	var upstream *llm.UpstreamError
	switch {
	case errors.As(err, &upstream):
		httputil.FailWithDetails(deps.Log, w,
			fmt.Sprintf("Generation API error: %d", upstream.Status), upstream.Body, upstream.Status)
	case errors.Is(err, llm.ErrNoCandidates):
		httputil.FailWithDetails(deps.Log, w,
			"No response from generation API", "API returned empty candidates", http.StatusInternalServerError)
	case errors.Is(err, llm.ErrTimeout):
		httputil.Fail(deps.Log, w, "Request timeout", err, http.StatusGatewayTimeout)
	case errors.Is(err, llm.ErrNetwork):
		httputil.Fail(deps.Log, w, "Network error", err, http.StatusInternalServerError)
	default:
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusInternalServerError)
	}
}

func wantsVisualization(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range visualKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

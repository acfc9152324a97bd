package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/event"
	"github.com/sells-group/leadscout/internal/export"
	"github.com/sells-group/leadscout/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the discovery API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env := initPipeline()
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
		}))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Query string `json:"query"`
				Limit int    `json:"limit"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if req.Query == "" {
				http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
				return
			}
			if req.Limit <= 0 {
				req.Limit = 10
			}
			streamEvents(w, r, env.Orchestrator.Search(r.Context(), req.Query, req.Limit))
		})

		r.Post("/enrich", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Companies []model.Company `json:"companies"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			companies := req.Companies
			if len(companies) == 0 {
				companies = env.Buffer.Snapshot()
			}
			streamEvents(w, r, env.Orchestrator.Enrich(r.Context(), companies))
		})

		r.Get("/download/{format}", func(w http.ResponseWriter, r *http.Request) {
			format := chi.URLParam(r, "format")
			data, err := export.Marshal(env.Buffer.Snapshot(), format)
			if err != nil {
				http.Error(w, `{"error":"invalid format, use json or csv"}`, http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", export.ContentType(format))
			w.Header().Set("Content-Disposition",
				fmt.Sprintf("attachment; filename=%s", export.Filename(format)))
			w.WriteHeader(http.StatusOK)
			w.Write(data)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			return srv.Shutdown(cmd.Context())
		})

		return g.Wait()
	},
}

// streamEvents writes pipeline events to the response as server-sent
// events. The stream ends after the terminal done event or when the
// client disconnects.
func streamEvents(w http.ResponseWriter, r *http.Request, events <-chan event.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			zap.L().Error("serve: marshal event", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			zap.L().Debug("serve: client disconnected", zap.Error(err))
			return
		}
		flusher.Flush()
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

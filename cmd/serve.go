package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shoreham-data/reconcile-cli/internal/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve classify, normalize, and compare over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine()
		if err != nil {
			return err
		}

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
		r := newRouter(env, limiter)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("serve: listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func newRouter(env *engine, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/classify", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, env.Classifier.Classify(body.Name))
	})

	r.Post("/normalize", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Address string `json:"address"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, env.Normalizer.Normalize(body.Address))
	})

	r.Post("/compare", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			A        model.Entity `json:"a"`
			B        model.Entity `json:"b"`
			Detailed bool         `json:"detailed"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if err := body.A.Validate(); err != nil {
			http.Error(w, `{"error":"invalid entity a"}`, http.StatusBadRequest)
			return
		}
		if err := body.B.Validate(); err != nil {
			http.Error(w, `{"error":"invalid entity b"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, env.Comparator.Compare(&body.A, &body.B, body.Detailed))
	})

	r.Post("/resolve", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			A model.Entity `json:"a"`
			B model.Entity `json:"b"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if err := body.A.Validate(); err != nil {
			http.Error(w, `{"error":"invalid entity a"}`, http.StatusBadRequest)
			return
		}
		if err := body.B.Validate(); err != nil {
			http.Error(w, `{"error":"invalid entity b"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, env.Resolver.Resolve(&body.A, &body.B))
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

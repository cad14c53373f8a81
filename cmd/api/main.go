package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tigranv/moneta/internal/api/handlers"
	"github.com/tigranv/moneta/internal/api/middleware"
	"github.com/tigranv/moneta/internal/avatar"
	"github.com/tigranv/moneta/internal/config"
	"github.com/tigranv/moneta/internal/jobs"
	jobsmem "github.com/tigranv/moneta/internal/jobs/inmemory"
	"github.com/tigranv/moneta/internal/logger"
	"github.com/tigranv/moneta/internal/store"
	storebq "github.com/tigranv/moneta/internal/store/bigquery"
	"github.com/tigranv/moneta/internal/store/memory"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	client, err := storebq.New(ctx, cfg.ProjectID, cfg.Dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create data service client")
	}
	defer client.Close()

	// The sample dataset serves reads when the hosted store is down.
	data := &handlers.DataAccess{
		Primary:  client,
		Fallback: memory.NewSampleStore(),
		Log:      log,
	}

	bulkPolicy := store.ParseBulkPolicy(cfg.BulkDeletePolicy)

	// Bulk deletes run as background jobs on an in-memory queue.
	jobStore := jobsmem.NewStore()
	jobQueue := jobsmem.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobs.NewBulkDeleteHandler(client, log)); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	var avatarUploader handlers.AvatarUploader
	if cfg.AvatarBucket != "" {
		avatarUploader = avatar.NewUploader(cfg.AvatarBucket)
	} else {
		log.Warn().Msg("No GCS bucket configured - avatar uploads will be disabled")
	}

	accountsHandler := handlers.NewAccountsHandler(data, log)
	transactionsHandler := handlers.NewTransactionsHandler(data, jobQueue, bulkPolicy, log)
	categoriesHandler := handlers.NewCategoriesHandler(data, log)
	peopleHandler := handlers.NewPeopleHandler(data, avatarUploader, log)
	shopsHandler := handlers.NewShopsHandler(data, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/accounts", collectionRoutes(accountsHandler.List, accountsHandler.Create))
	mux.HandleFunc("/api/accounts/", deleteRoute("/api/accounts/", accountsHandler.Delete))

	mux.HandleFunc("/api/transactions", collectionRoutes(transactionsHandler.List, transactionsHandler.Create))
	mux.HandleFunc("/api/transactions/bulk-delete", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			transactionsHandler.BulkDelete(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/transactions/", deleteRoute("/api/transactions/", transactionsHandler.Delete))

	mux.HandleFunc("/api/categories", collectionRoutes(categoriesHandler.List, categoriesHandler.Create))
	mux.HandleFunc("/api/categories/", deleteRoute("/api/categories/", categoriesHandler.Delete))

	mux.HandleFunc("/api/shops", collectionRoutes(shopsHandler.List, shopsHandler.Create))
	mux.HandleFunc("/api/shops/", deleteRoute("/api/shops/", shopsHandler.Delete))

	mux.HandleFunc("/api/people", collectionRoutes(peopleHandler.List, peopleHandler.Create))
	mux.HandleFunc("/api/people/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/people/")
		if id, ok := strings.CutSuffix(rest, "/avatar"); ok && id != "" {
			if r.Method == http.MethodPost || r.Method == http.MethodPut {
				peopleHandler.UploadAvatar(w, r, id)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			}
			return
		}
		deleteRoute("/api/people/", peopleHandler.Delete)(w, r)
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// collectionRoutes dispatches GET to list and POST to create.
func collectionRoutes(list, create http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	}
}

// deleteRoute dispatches DELETE /prefix/{id} to del.
func deleteRoute(prefix string, del func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "ID is required")
			return
		}
		del(w, r, id)
	}
}

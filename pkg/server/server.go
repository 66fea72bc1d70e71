package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/qb-tools/quote-forge/pkg/handlers/quotation"
	qfmiddleware "github.com/qb-tools/quote-forge/pkg/server/middleware"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
}

type Dependencies struct {
	Quotations handlers.Service
	Logger     zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	handler := handlers.NewHandler(config.Dependencies.Quotations)
	logger := config.Dependencies.Logger

	router := chi.NewRouter()

	router.Use(qfmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/draft", func(r chi.Router) {
			r.Get("/", handler.GetDraft)
			r.Put("/", handler.ReplaceDraft)
			r.Delete("/", handler.ClearDraft)
			r.Post("/save", handler.SaveDraft)
			r.Post("/submit", handler.SubmitDraft)
			r.Get("/pricing", handler.GetDraftPricing)
			r.Post("/validate", handler.ValidateDraft)
		})

		r.Get("/materials", handler.ListMaterials)
		r.Post("/materials/refresh", handler.RefreshMaterials)

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", handler.ListQuotations)
			r.Get("/{id}", handler.GetQuotation)
			r.Delete("/{id}", handler.DeleteQuotation)
			r.Post("/{id}/duplicate", handler.DuplicateQuotation)
			r.Put("/{id}/status", handler.UpdateQuotationStatus)
			r.Get("/{id}/pdf", handler.GetQuotationPDF)
		})
	})

	return router
}

func NewWebAPI(config Config) *WebAPI {
	router := ConfigureRouter(config)

	return &WebAPI{
		router: router,
		logger: &config.Dependencies.Logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

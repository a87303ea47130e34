package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mgnegypt/nano-image/internal/api"
	apiMiddleware "github.com/mgnegypt/nano-image/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	accountHandler := api.NewAccountHandler(app.accountService)
	imageHandler := api.NewImageHandler(app.imageService)
	uploadHandler := api.NewUploadHandler(app.uploadService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenVerifier)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Account provisioning endpoints
		r.Post("/accounts", accountHandler.CreateAccount)
		r.Get("/accounts", accountHandler.ListAccounts)
		r.Get("/accounts/{id}", accountHandler.GetAccount)

		// Generation job endpoints
		r.Post("/images/generate", imageHandler.Generate)
		r.Post("/images/edit", imageHandler.Edit)
		r.Get("/images/tasks", imageHandler.ListTasks)
		r.Get("/images/tasks/{remoteID}", imageHandler.CheckStatus)
		r.Post("/images/save", imageHandler.Save)
		r.Get("/images", imageHandler.ListArtifacts)

		// Input image endpoints
		r.Post("/uploads", uploadHandler.CreateUpload)
		r.Get("/uploads", uploadHandler.ListUploads)
		r.Delete("/uploads/{id}", uploadHandler.DeleteUpload)
	})

	// Stored blobs (uploads and saved artifacts) are served as static files
	fileServer := http.StripPrefix("/blobs/", http.FileServer(http.Dir(app.config.Blob.Dir)))
	r.Get("/blobs/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

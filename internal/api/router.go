package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "omnisearch/gateway/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig carries the knobs the router needs from the app.
type RouterConfig struct {
	AuthSecret     string
	RequestTimeout time.Duration
}

// NewRouter creates and configures the gateway's chi router.
func NewRouter(cfg RouterConfig, chatHandler *ChatHandler, documentHandler *DocumentHandler, searchHandler *SearchHandler, authHandler *AuthHandler) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID) // Injects a unique request ID into the context.
	r.Use(middleware.RealIP)    // Sets the remote address to the real IP from proxy headers.
	r.Use(middleware.Logger)    // Logs the start and end of each request.
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error.

	// Serves the auto-generated Swagger UI for API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Health check for container orchestration probes.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		// Routes that exist to obtain a session.
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/register", authHandler.HandleRegister)

		// Everything else requires a valid signed-in session.
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(cfg.AuthSecret))

			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/auth/refresh", authHandler.HandleRefresh)

			// --- Chat ---
			r.Post("/chat", chatHandler.HandleSendMessage)
			r.Get("/chat/sessions", chatHandler.HandleListSessions)
			r.Post("/chat/sessions", chatHandler.HandleCreateSession)
			r.Get("/chat/sessions/{sessionID}", chatHandler.HandleGetSession)
			r.Delete("/chat/sessions/{sessionID}", chatHandler.HandleDeleteSession)

			// --- Documents ---
			r.Get("/documents", documentHandler.HandleListDocuments)
			r.Post("/documents/upload", documentHandler.HandleUploadDocument)
			r.Get("/documents/uploads", documentHandler.HandleListUploads)
			r.Delete("/documents/uploads/{fileID}", documentHandler.HandleDismissUpload)
			r.Get("/documents/stats/summary", documentHandler.HandleDocumentStats)
			r.Get("/documents/{documentID}", documentHandler.HandleGetDocument)
			r.Put("/documents/{documentID}", documentHandler.HandleUpdateDocument)
			r.Delete("/documents/{documentID}", documentHandler.HandleDeleteDocument)
			r.Get("/documents/{documentID}/content", documentHandler.HandleDocumentContent)
			r.Get("/documents/{documentID}/download", documentHandler.HandleDownloadDocument)

			// --- Search ---
			r.Post("/search/documents", searchHandler.HandleSemanticSearch)
			r.Get("/search/documents/simple", searchHandler.HandleKeywordSearch)
		})
	})

	return r
}

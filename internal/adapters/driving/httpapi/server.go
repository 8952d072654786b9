// Package httpapi is the REST surface. Handlers stay thin: they parse
// and validate the wire format, dispatch into the driving ports and
// translate domain errors to status codes.
package httpapi

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/corpuslabs/corpusd/internal/config"
	"github.com/corpuslabs/corpusd/internal/core/ports/driven"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
)

// Deps are the collaborating services the server dispatches into.
type Deps struct {
	Projects  driving.ProjectService
	Documents driving.DocumentService
	Ingestion driving.IngestionService
	Retrieval driving.RetrievalService
	Users     driven.UserStore
}

// Server wraps the fiber application.
type Server struct {
	app  *fiber.App
	addr string
}

// NewServer builds the application with its middleware and routes.
func NewServer(cfg *config.Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "corpusd",
		ErrorHandler: errorHandler,
		// The upload handler enforces the configured limit with a 413;
		// the body limit above it only guards against unbounded reads.
		BodyLimit: cfg.Ingestion.MaxFileSizeBytes() * 2,
	})

	app.Use(requestID())
	app.Use(accessLog())

	h := &handlers{
		projects:    deps.Projects,
		documents:   deps.Documents,
		ingestion:   deps.Ingestion,
		retrieval:   deps.Retrieval,
		validate:    validator.New(),
		maxFileSize: cfg.Ingestion.MaxFileSizeBytes(),
	}

	app.Get("/healthz", h.healthz)

	v1 := app.Group("/api/v1", authenticate(cfg.JWT.Secret, deps.Users))

	v1.Post("/projects", h.createProject)
	v1.Get("/projects", h.listProjects)
	v1.Get("/projects/:id", h.getProject)
	v1.Patch("/projects/:id", h.updateProject)
	v1.Post("/projects/:id/archive", h.archiveProject)
	v1.Delete("/projects/:id", h.deleteProject)
	v1.Get("/projects/:id/documents", h.listDocuments)

	v1.Get("/documents/:id", h.getDocument)
	v1.Delete("/documents/:id", h.deleteDocument)
	v1.Post("/documents/upload", h.uploadDocument)
	v1.Post("/documents/crawl", h.crawlURL)

	v1.Post("/query", h.query)

	return &Server{
		app:  app,
		addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	}
}

// Listen serves until Shutdown is called.
func (s *Server) Listen() error {
	return s.app.Listen(s.addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber application for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

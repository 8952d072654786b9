package httpapi

import (
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/corpuslabs/corpusd/internal/core/domain"
	"github.com/corpuslabs/corpusd/internal/core/ports/driving"
)

// handlers binds the driving ports to routes. All pipeline logic lives
// behind the ports; handlers only translate the wire format.
type handlers struct {
	projects  driving.ProjectService
	documents driving.DocumentService
	ingestion driving.IngestionService
	retrieval driving.RetrievalService

	validate    *validator.Validate
	maxFileSize int
}

func (h *handlers) parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func pathUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func parseBump(raw string) (*domain.BumpKind, error) {
	if raw == "" {
		return nil, nil
	}
	switch kind := domain.BumpKind(raw); kind {
	case domain.BumpMajor, domain.BumpMinor, domain.BumpPatch:
		return &kind, nil
	default:
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("invalid bump %q", raw))
	}
}

func (h *handlers) healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) createProject(c *fiber.Ctx) error {
	var req createProjectRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	project, err := h.projects.Create(c.Context(), driving.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		OwnerID:     userIDFrom(c),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toProjectResponse(project))
}

func (h *handlers) listProjects(c *fiber.Ctx) error {
	projects, err := h.projects.List(c.Context(), userIDFrom(c))
	if err != nil {
		return err
	}

	resp := make([]projectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, toProjectResponse(&projects[i]))
	}
	return c.JSON(resp)
}

func (h *handlers) getProject(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	project, err := h.projects.Get(c.Context(), id, userIDFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(toProjectResponse(project))
}

func (h *handlers) updateProject(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	project, err := h.projects.Update(c.Context(), id, userIDFrom(c), driving.UpdateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(toProjectResponse(project))
}

func (h *handlers) archiveProject(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.projects.Archive(c.Context(), id, userIDFrom(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) deleteProject(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.projects.Delete(c.Context(), id, userIDFrom(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) listDocuments(c *fiber.Ctx) error {
	projectID, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	docs, err := h.documents.List(c.Context(), projectID, userIDFrom(c))
	if err != nil {
		return err
	}

	resp := make([]documentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, toDocumentResponse(&docs[i]))
	}
	return c.JSON(resp)
}

func (h *handlers) getDocument(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.documents.Get(c.Context(), id, userIDFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(toDocumentResponse(doc))
}

func (h *handlers) deleteDocument(c *fiber.Ctx) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.Context(), id, userIDFrom(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// uploadDocument accepts a multipart upload: a "file" part plus a
// "project_id" field and an optional "bump" field.
func (h *handlers) uploadDocument(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing file part")
	}
	if file.Size > int64(h.maxFileSize) {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds %d bytes", h.maxFileSize))
	}

	projectID, err := uuid.Parse(c.FormValue("project_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid project_id")
	}
	bump, err := parseBump(c.FormValue("bump"))
	if err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unreadable file part")
	}
	defer src.Close()

	data := make([]byte, file.Size)
	if _, err := io.ReadFull(src, data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unreadable file part")
	}

	docID, err := h.ingestion.IngestFile(c.Context(), driving.IngestFileRequest{
		ProjectID: projectID,
		UserID:    userIDFrom(c),
		Filename:  file.Filename,
		Data:      data,
		Bump:      bump,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(uploadResponse{
		DocumentID: docID,
		Status:     "accepted",
		Message:    fmt.Sprintf("document %s ingested", file.Filename),
	})
}

func (h *handlers) crawlURL(c *fiber.Ctx) error {
	var req ingestURLRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	var bump *domain.BumpKind
	if req.Bump != nil {
		parsed, err := parseBump(*req.Bump)
		if err != nil {
			return err
		}
		bump = parsed
	}

	docID, err := h.ingestion.IngestURL(c.Context(), driving.IngestURLRequest{
		ProjectID: req.ProjectID,
		UserID:    userIDFrom(c),
		URL:       req.URL,
		Bump:      bump,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(uploadResponse{
		DocumentID: docID,
		Status:     "accepted",
		Message:    fmt.Sprintf("crawled %s", req.URL),
	})
}

func (h *handlers) query(c *fiber.Ctx) error {
	var req queryRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.retrieval.Query(c.Context(), req.ProjectID, userIDFrom(c), req.QueryText, domain.QueryOptions{
		TopK:       req.TopK,
		Hybrid:     req.UseHybridSearch,
		Rerank:     req.UseReranking,
		Synthesize: req.UseAgenticRAG,
	})
	if err != nil {
		return err
	}
	return c.JSON(toQueryResponse(result))
}

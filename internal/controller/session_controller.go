package controller

import (
	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"
	"pdfchat-be/internal/pkg/serverutils"
	"pdfchat-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, authRequired fiber.Handler)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UploadDocument(ctx *fiber.Ctx) error
	ListDocuments(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessions  service.ISessionService
	isolation service.IIsolationService
	auth      service.IAuthService
	validate  *validator.Validate
}

func NewSessionController(sessions service.ISessionService, isolation service.IIsolationService, auth service.IAuthService) ISessionController {
	return &sessionController{
		sessions:  sessions,
		isolation: isolation,
		auth:      auth,
		validate:  validator.New(),
	}
}

// markActivity moves the session's activity clock and remembers it as the
// login's current session. Only chat/upload paths call this.
func (c *sessionController) markActivity(ctx *fiber.Ctx, ownerId, sessionId uuid.UUID) error {
	if err := c.sessions.Touch(ctx.Context(), ownerId, sessionId); err != nil {
		return err
	}
	if token, ok := ctx.Locals("access_token").(string); ok && token != "" {
		if err := c.auth.TrackActiveSession(ctx.Context(), token, sessionId); err != nil {
			return err
		}
	}
	return nil
}

func (c *sessionController) RegisterRoutes(r fiber.Router, authRequired fiber.Handler) {
	h := r.Group("/sessions", authRequired)
	h.Post("/", c.Create)
	h.Get("/", c.List)
	h.Get("/:id", c.Get)
	h.Patch("/:id", c.Rename)
	h.Post("/:id/archive", c.Archive)
	h.Post("/:id/restore", c.Restore)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/documents", c.UploadDocument)
	h.Get("/:id/documents", c.ListDocuments)
	h.Post("/:id/search", c.Search)
}

func sessionIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		// An unparseable id can never name an existing session
		return uuid.Nil, apperror.New(apperror.CodeNotFound, "session not found")
	}
	return id, nil
}

func toSessionResponse(s *entity.Session) dto.SessionResponse {
	return dto.SessionResponse{
		Id:             s.Id,
		Title:          s.Title,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ArchivedAt:     s.ArchivedAt,
	}
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return fiber.ErrBadRequest
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Create(ctx.Context(), user.Id, req.Title, req.Metadata)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusCreated,
		"message": "Session created",
		"data":    toSessionResponse(session),
	})
}

func (c *sessionController) List(ctx *fiber.Ctx) error {
	user := serverutils.CurrentUser(ctx)

	var statusFilter *entity.SessionStatus
	if raw := ctx.Query("status"); raw != "" {
		status := entity.SessionStatus(raw)
		if status != entity.SessionStatusActive && status != entity.SessionStatusArchived {
			return apperror.New(apperror.CodeValidation, "unknown status filter")
		}
		statusFilter = &status
	}
	limit := ctx.QueryInt("limit", 0)

	sessions, err := c.sessions.List(ctx.Context(), user.Id, statusFilter, limit)
	if err != nil {
		return err
	}

	responses := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, toSessionResponse(s))
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "OK",
		"data":    responses,
	})
}

func (c *sessionController) Get(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Get(ctx.Context(), user.Id, id)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "OK",
		"data":    toSessionResponse(session),
	})
}

func (c *sessionController) Rename(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Rename(ctx.Context(), user.Id, id, req.Title)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Session renamed",
		"data":    toSessionResponse(session),
	})
}

func (c *sessionController) Archive(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Archive(ctx.Context(), user.Id, id)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Session archived",
		"data":    toSessionResponse(session),
	})
}

func (c *sessionController) Restore(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Restore(ctx.Context(), user.Id, id)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Session restored",
		"data":    toSessionResponse(session),
	})
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	if err := c.sessions.HardDelete(ctx.Context(), user.Id, id); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "Session deleted",
		"data":    nil,
	})
}

// UploadDocument registers an uploaded file's metadata under the session's
// namespace. This is an activity-bearing operation, so it also moves
// last_activity_at; listing documents does not.
func (c *sessionController) UploadDocument(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RegisterDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Get(ctx.Context(), user.Id, id)
	if err != nil {
		return err
	}
	if session.Status != entity.SessionStatusActive {
		return apperror.New(apperror.CodeInvalidTransition, "session is not active")
	}

	document, err := c.isolation.RegisterDocument(ctx.Context(), session, &req)
	if err != nil {
		return err
	}

	if err := c.markActivity(ctx, user.Id, id); err != nil {
		return err
	}

	namespace, err := c.isolation.EnsureNamespace(ctx.Context(), session)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusCreated,
		"message": "Document registered",
		"data": dto.DocumentResponse{
			Id:         document.Id,
			SessionId:  document.SessionId,
			FileName:   document.FileName,
			FileSize:   document.FileSize,
			FileType:   document.FileType,
			ChunkCount: document.ChunkCount,
			UploadedAt: document.UploadedAt,
			Namespace:  namespace,
		},
	})
}

// Search runs the retrieval read path for a chat turn: a similarity lookup
// scoped to the session's namespace. It counts as session activity.
func (c *sessionController) Search(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SearchSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := c.validate.Struct(&req); err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Get(ctx.Context(), user.Id, id)
	if err != nil {
		return err
	}
	if session.Status != entity.SessionStatusActive {
		return apperror.New(apperror.CodeInvalidTransition, "session is not active")
	}

	scored, err := c.isolation.SearchSimilar(ctx.Context(), session, req.Embedding, req.Limit)
	if err != nil {
		return err
	}

	if err := c.markActivity(ctx, user.Id, id); err != nil {
		return err
	}

	responses := make([]dto.ScoredChunkResponse, 0, len(scored))
	for _, s := range scored {
		responses = append(responses, dto.ScoredChunkResponse{
			DocumentId: s.Chunk.DocumentId,
			ChunkIndex: s.Chunk.ChunkIndex,
			Content:    s.Chunk.Content,
			Similarity: s.Similarity,
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "OK",
		"data":    responses,
	})
}

func (c *sessionController) ListDocuments(ctx *fiber.Ctx) error {
	id, err := sessionIdParam(ctx)
	if err != nil {
		return err
	}

	user := serverutils.CurrentUser(ctx)
	session, err := c.sessions.Get(ctx.Context(), user.Id, id)
	if err != nil {
		return err
	}

	documents, err := c.isolation.ListDocuments(ctx.Context(), session)
	if err != nil {
		return err
	}

	namespace, err := c.isolation.EnsureNamespace(ctx.Context(), session)
	if err != nil {
		return err
	}
	responses := make([]dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		responses = append(responses, dto.DocumentResponse{
			Id:         d.Id,
			SessionId:  d.SessionId,
			FileName:   d.FileName,
			FileSize:   d.FileSize,
			FileType:   d.FileType,
			ChunkCount: d.ChunkCount,
			UploadedAt: d.UploadedAt,
			Namespace:  namespace,
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    fiber.StatusOK,
		"message": "OK",
		"data":    responses,
	})
}

package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/usecase"
	xhttp "github.com/Hjcho123/PlusAlpha-sub001/pkg/http"
	xlogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// InsightsHandler exposes insight generation and the per-insight chat thread.
type InsightsHandler struct {
	logger *xlogger.Logger
	orch   *usecase.InsightOrchestrator
	chat   *usecase.ChatService
}

func NewInsightsHandler(logger *xlogger.Logger, orch *usecase.InsightOrchestrator, chat *usecase.ChatService) *InsightsHandler {
	return &InsightsHandler{logger: logger, orch: orch, chat: chat}
}

func (h *InsightsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/insights")
	g.GET("", h.List)
	g.POST("", h.Generate)
	g.POST("/:id/chat", h.Ask)
	g.GET("/:id/chat", h.History)
}

func (h *InsightsHandler) List(c echo.Context) error {
	return xhttp.SuccessResponse(c, echo.Map{
		"insights": h.orch.Recent(),
		"busy":     h.orch.Busy(),
	})
}

func (h *InsightsHandler) Generate(c echo.Context) error {
	req := &models.GenerateInsightRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	insight, err := h.orch.Generate(c.Request().Context(), req.Symbol)
	switch {
	case errors.Is(err, usecase.ErrNotWatched):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()).WithError(err))
	case errors.Is(err, usecase.ErrBusy):
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("an insight is already being generated").WithError(err))
	case err != nil:
		h.logger.Error("insight generation failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, insight)
}

func (h *InsightsHandler) Ask(c echo.Context) error {
	id := c.Param("id")
	insight, ok := h.orch.Find(id)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("insight not found: "+id))
	}

	req := &models.AskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.chat.Ask(c.Request().Context(), id, req.Question, &insight); err != nil {
		if errors.Is(err, usecase.ErrPending) {
			return xhttp.AppErrorResponse(c, xhttp.ConflictError("previous question is still being answered").WithError(err))
		}
		h.logger.Error("chat ask failed", xlogger.String("insight", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, echo.Map{"pending": true})
}

func (h *InsightsHandler) History(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.orch.Find(id); !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("insight not found: "+id))
	}
	return xhttp.SuccessResponse(c, echo.Map{
		"exchanges": h.chat.History(id),
		"pending":   h.chat.Pending(id),
	})
}

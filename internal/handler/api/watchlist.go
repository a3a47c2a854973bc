package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/usecase"
	xhttp "github.com/Hjcho123/PlusAlpha-sub001/pkg/http"
	xlogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
)

// WatchlistHandler exposes the watchlist table and refresh status over HTTP.
type WatchlistHandler struct {
	logger    *xlogger.Logger
	store     *usecase.WatchlistStore
	scheduler *usecase.RefreshScheduler
	collector *usecase.TickCollector
}

func NewWatchlistHandler(
	logger *xlogger.Logger,
	store *usecase.WatchlistStore,
	scheduler *usecase.RefreshScheduler,
	collector *usecase.TickCollector,
) *WatchlistHandler {
	return &WatchlistHandler{
		logger:    logger,
		store:     store,
		scheduler: scheduler,
		collector: collector,
	}
}

func (h *WatchlistHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/watchlist")
	g.GET("", h.List)
	g.POST("", h.Add)
	g.DELETE("/:symbol", h.Remove)
	g.GET("/status", h.Status)
}

// watchlistView is the List payload: entries in stable symbol order plus the
// refresh status the dashboard shows alongside them.
type watchlistView struct {
	Entries []models.WatchlistEntry `json:"entries"`
	Status  usecase.RefreshStatus   `json:"status"`
	Live    bool                    `json:"live"`
	AsOf    time.Time               `json:"asOf"`
}

func (h *WatchlistHandler) List(c echo.Context) error {
	snapshot := h.store.Entries()
	entries := make([]models.WatchlistEntry, 0, len(snapshot))
	for _, sym := range h.store.Symbols() {
		entries = append(entries, snapshot[sym])
	}
	return xhttp.SuccessResponse(c, watchlistView{
		Entries: entries,
		Status:  h.scheduler.Status(),
		Live:    h.collector.IsConnected(),
		AsOf:    time.Now(),
	})
}

func (h *WatchlistHandler) Add(c echo.Context) error {
	req := &models.AddSymbolRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, err := h.store.AddSymbol(c.Request().Context(), req.Symbol)
	if err != nil {
		if errors.Is(err, usecase.ErrValidation) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
		}
		h.logger.Error("watchlist add failed", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, entry)
}

func (h *WatchlistHandler) Remove(c echo.Context) error {
	symbol := c.Param("symbol")
	if err := h.store.RemoveSymbol(symbol); err != nil {
		if errors.Is(err, usecase.ErrNotWatched) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()).WithError(err))
		}
		h.logger.Error("watchlist remove failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *WatchlistHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, echo.Map{
		"refresh": h.scheduler.Status(),
		"live":    h.collector.IsConnected(),
		"symbols": h.store.Count(),
	})
}

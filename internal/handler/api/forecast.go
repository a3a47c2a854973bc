package api

import (
	"github.com/labstack/echo/v4"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/services/forecast"
	"github.com/Hjcho123/PlusAlpha-sub001/internal/usecase"
	xhttp "github.com/Hjcho123/PlusAlpha-sub001/pkg/http"
	xlogger "github.com/Hjcho123/PlusAlpha-sub001/pkg/logger"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/util"
)

// ForecastHandler runs Monte Carlo projections for watched symbols.
type ForecastHandler struct {
	logger *xlogger.Logger
	store  *usecase.WatchlistStore
	opts   forecast.Options
}

func NewForecastHandler(logger *xlogger.Logger, store *usecase.WatchlistStore, opts forecast.Options) *ForecastHandler {
	return &ForecastHandler{logger: logger, store: store, opts: opts}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/forecast/:symbol", h.Forecast)
}

// Forecast projects the symbol's current price forward. Horizon and model
// parameters can be overridden per request; the forecast starts from the live
// price in the store, so it reflects the latest tick.
func (h *ForecastHandler) Forecast(c echo.Context) error {
	symbol := c.Param("symbol")
	entry, ok := h.store.Get(symbol)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("symbol not watched: "+symbol))
	}

	opts := h.opts
	opts.HorizonDays = util.ParseIntDefault(c.QueryParam("days"), opts.HorizonDays)
	opts.AnnualVolatility = util.ParseFloatDefault(c.QueryParam("volatility"), opts.AnnualVolatility)
	opts.AnnualDrift = util.ParseFloatDefault(c.QueryParam("drift"), opts.AnnualDrift)
	if opts.HorizonDays < 1 || opts.HorizonDays > 365 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("days must be within [1,365]"))
	}
	if opts.AnnualVolatility <= 0 || opts.AnnualVolatility > 5 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("volatility must be within (0,5]"))
	}

	result, err := forecast.Simulate(entry.Quote.Symbol, entry.Quote.Price, opts)
	if err != nil {
		h.logger.Error("forecast failed", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, result)
}

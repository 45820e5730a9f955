package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"MarketScout/internal/collector"
	"MarketScout/internal/engine"
	"MarketScout/internal/model"
	"MarketScout/internal/news"
	"MarketScout/internal/position"
	"MarketScout/internal/recorder"
	"MarketScout/internal/scanner"
)

// HeadlineSource returns recent headlines for a symbol.
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, symbol string) ([]news.Headline, error)
}

// Handler serves the engine over HTTP.
type Handler struct {
	Engine   *engine.Engine
	News     HeadlineSource
	Recorder recorder.Recorder
}

// TakeRequest opens a position. Without prices the latest quote and the
// pricing model are used; with prices all three must be given.
type TakeRequest struct {
	Symbol        string  `json:"symbol" validate:"required,max=20"`
	EntryPrice    float64 `json:"entry_price" validate:"gte=0"`
	TargetPrice   float64 `json:"target_price" validate:"gte=0"`
	StopLossPrice float64 `json:"stop_loss_price" validate:"gte=0"`
}

// EventsRequest pages the position journal.
type EventsRequest struct {
	Limit int `query:"limit" default:"20" validate:"gte=1,lte=500"`
}

// IndicatorsRequest selects how many trailing bars to return.
type IndicatorsRequest struct {
	Bars int `query:"bars" default:"60" validate:"gte=1,lte=500"`
}

type indicatorsView struct {
	Symbol     string      `json:"symbol"`
	Time       []time.Time `json:"time"`
	Close      []*float64  `json:"close"`
	SMAShort   []*float64  `json:"sma_short"`
	SMALong    []*float64  `json:"sma_long"`
	RSI        []*float64  `json:"rsi"`
	MACD       []*float64  `json:"macd"`
	MACDSignal []*float64  `json:"macd_signal"`
}

// nullable maps NaN to JSON null.
func nullable(v []float64) []*float64 {
	out := make([]*float64, len(v))
	for i, f := range v {
		if !math.IsNaN(f) {
			out[i] = model.Float(f)
		}
	}
	return out
}

type candidatesView struct {
	CycleAt    *time.Time          `json:"cycle_at"`
	Candidates []scanner.Candidate `json:"candidates"`
}

// RegisterRoutes mounts the API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/candidates", h.Candidates)
	g.GET("/report", h.Report)
	g.POST("/scan", h.Scan)
	g.GET("/positions", h.Positions)
	g.POST("/positions", h.Take)
	g.DELETE("/positions/:symbol", h.Release)
	g.GET("/events", h.Events)
	g.GET("/news/:symbol", h.Headlines)
	g.GET("/indicators/:symbol", h.Indicators)
}

// Candidates returns the post-filtered candidates of the last cycle.
func (h *Handler) Candidates(c echo.Context) error {
	r := h.Engine.LastReport()
	if r == nil {
		return success(c, candidatesView{Candidates: []scanner.Candidate{}})
	}
	return success(c, candidatesView{CycleAt: &r.StartedAt, Candidates: r.Candidates})
}

// Report returns the full last cycle report.
func (h *Handler) Report(c echo.Context) error {
	r := h.Engine.LastReport()
	if r == nil {
		return failure(c, http.StatusNotFound, "ERR_NO_CYCLE", "no cycle has completed yet")
	}
	return success(c, r)
}

// Scan runs a cycle now.
func (h *Handler) Scan(c echo.Context) error {
	r, err := h.Engine.RunCycle(c.Request().Context())
	if errors.Is(err, engine.ErrCycleInProgress) {
		return failure(c, http.StatusConflict, "ERR_CYCLE_RUNNING", err.Error())
	}
	if err != nil {
		return failure(c, http.StatusInternalServerError, "ERR_CYCLE", err.Error())
	}
	return success(c, r)
}

// Positions returns the position table.
func (h *Handler) Positions(c echo.Context) error {
	return success(c, h.Engine.Tracker.Positions())
}

// Take opens a position.
func (h *Handler) Take(c echo.Context) error {
	req := &TakeRequest{}
	if errs := bindAndValidate(c, req); errs != nil {
		return dataResponse(c, http.StatusBadRequest, errs)
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))

	var (
		p   model.Position
		err error
	)
	explicit := req.EntryPrice > 0 || req.TargetPrice > 0 || req.StopLossPrice > 0
	switch {
	case !explicit:
		p, err = h.Engine.TakePosition(c.Request().Context(), symbol)
	case req.EntryPrice <= 0 || req.TargetPrice <= 0 || req.StopLossPrice <= 0:
		return failure(c, http.StatusBadRequest, "ERR_PRICES", "entry_price, target_price and stop_loss_price must be given together")
	case req.StopLossPrice >= req.EntryPrice || req.TargetPrice <= req.EntryPrice:
		return failure(c, http.StatusBadRequest, "ERR_PRICES", "stop_loss_price < entry_price < target_price is required")
	default:
		p, err = h.Engine.TakePositionAt(symbol, req.EntryPrice, req.TargetPrice, req.StopLossPrice)
	}
	if err != nil {
		return actionError(c, err)
	}
	return created(c, p)
}

// Release closes the open position of :symbol.
func (h *Handler) Release(c echo.Context) error {
	p, err := h.Engine.ReleasePosition(strings.ToUpper(c.Param("symbol")))
	if err != nil {
		return actionError(c, err)
	}
	return success(c, p)
}

// Events returns the most recent journal entries.
func (h *Handler) Events(c echo.Context) error {
	req := &EventsRequest{}
	if errs := bindAndValidate(c, req); errs != nil {
		return dataResponse(c, http.StatusBadRequest, errs)
	}
	if h.Recorder == nil {
		return success(c, []recorder.PositionEvent{})
	}
	evts, err := h.Recorder.RecentPositionEvents(req.Limit)
	if err != nil {
		return failure(c, http.StatusInternalServerError, "ERR_JOURNAL", err.Error())
	}
	if evts == nil {
		evts = []recorder.PositionEvent{}
	}
	return success(c, evts)
}

// Headlines returns recent headlines for :symbol.
func (h *Handler) Headlines(c echo.Context) error {
	if h.News == nil {
		return failure(c, http.StatusNotFound, "ERR_NEWS_DISABLED", "news is not configured")
	}
	hs, err := h.News.FetchHeadlines(c.Request().Context(), strings.ToUpper(c.Param("symbol")))
	if err != nil {
		return failure(c, http.StatusBadGateway, "ERR_NEWS", err.Error())
	}
	return success(c, hs)
}

// Indicators returns the indicator series of :symbol for charting.
func (h *Handler) Indicators(c echo.Context) error {
	req := &IndicatorsRequest{}
	if errs := bindAndValidate(c, req); errs != nil {
		return dataResponse(c, http.StatusBadRequest, errs)
	}
	symbol := strings.ToUpper(c.Param("symbol"))
	sc := h.Engine.Scanner
	series, err := sc.Provider.FetchSeries(c.Request().Context(), symbol, sc.Period)
	if err != nil {
		return actionError(c, err)
	}
	series.Normalize()
	s := sc.Calculator.Series(series).Tail(req.Bars)
	return success(c, indicatorsView{
		Symbol:     symbol,
		Time:       s.Time,
		Close:      nullable(s.Close),
		SMAShort:   nullable(s.SMAShort),
		SMALong:    nullable(s.SMALong),
		RSI:        nullable(s.RSI),
		MACD:       nullable(s.MACD),
		MACDSignal: nullable(s.MACDSignal),
	})
}

func actionError(c echo.Context, err error) error {
	var already *position.AlreadyOpenError
	var none *position.NoOpenPositionError
	switch {
	case errors.As(err, &already):
		return failure(c, http.StatusConflict, "ERR_ALREADY_OPEN", err.Error())
	case errors.As(err, &none):
		return failure(c, http.StatusNotFound, "ERR_NO_OPEN_POSITION", err.Error())
	case errors.Is(err, collector.ErrNoData):
		return failure(c, http.StatusNotFound, "ERR_NO_DATA", err.Error())
	case errors.Is(err, engine.ErrNoProjectedMove):
		return failure(c, http.StatusUnprocessableEntity, "ERR_NO_PROJECTED_MOVE", err.Error())
	case errors.Is(err, model.ErrMalformedQuote):
		return failure(c, http.StatusBadGateway, "ERR_MALFORMED_QUOTE", err.Error())
	default:
		return failure(c, http.StatusBadGateway, "ERR_PROVIDER", err.Error())
	}
}

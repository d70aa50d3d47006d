package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"FinResearch/internal/domain/models"
	"FinResearch/internal/service/feed"
	"FinResearch/internal/service/render"
	"FinResearch/internal/usecase"
	xhttp "FinResearch/pkg/http"
	xlogger "FinResearch/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// OwnerHeader identifies the caller; reports are scoped to it.
const (
	OwnerHeader  = "X-User-ID"
	defaultOwner = "anonymous"
)

var registerTicker sync.Once

// ResearchEchoHandler serves the research API and the report feed.
type ResearchEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.ResearchUseCase
	hub    *feed.Hub
}

func NewResearchEchoHandler(logger *xlogger.Logger, uc *usecase.ResearchUseCase, hub *feed.Hub) *ResearchEchoHandler {
	registerTicker.Do(func() {
		_ = xhttp.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
			return usecase.ValidTicker(fl.Field().String())
		})
	})
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ResearchEchoHandler{logger: logger, uc: uc, hub: hub}
}

func (h *ResearchEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/research")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/persist", h.Persist)
	g.GET("/:id/html", h.HTML)
	g.GET("/:id/pdf", h.PDF)
	if h.hub != nil {
		e.GET("/ws/reports", h.Feed)
	}
}

func owner(c echo.Context) string {
	if o := strings.TrimSpace(c.Request().Header.Get(OwnerHeader)); o != "" {
		return o
	}
	return defaultOwner
}

func (h *ResearchEchoHandler) Create(c echo.Context) error {
	req := &models.CreateResearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.uc.Create(c.Request().Context(), owner(c), req.ToDomain())
	if err != nil {
		var se *models.StoreError
		if errors.As(err, &se) && se.ReportID != "" {
			appErr := xhttp.StoreUnavailableError("report computed but not saved").
				WithParam("report_id", se.ReportID).
				WithError(err)
			return xhttp.PartialResponse(c, appErr, report)
		}
		return h.fail(c, "create research", err)
	}
	return xhttp.CreatedResponse(c, report)
}

func (h *ResearchEchoHandler) List(c echo.Context) error {
	req := &models.ListResearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.uc.List(c.Request().Context(), owner(c), req.Limit)
	if err != nil {
		return h.fail(c, "list research", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ResearchEchoHandler) Get(c echo.Context) error {
	report, ok, err := h.load(c)
	if !ok {
		return err
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ResearchEchoHandler) Delete(c echo.Context) error {
	req := &models.ReportIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.uc.Delete(c.Request().Context(), owner(c), req.ID); err != nil {
		return h.fail(c, "delete research", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ResearchEchoHandler) Persist(c echo.Context) error {
	req := &models.ReportIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	report, err := h.uc.Persist(c.Request().Context(), owner(c), req.ID)
	if err != nil {
		return h.fail(c, "persist research", err)
	}
	return xhttp.CreatedResponse(c, report)
}

func (h *ResearchEchoHandler) HTML(c echo.Context) error {
	report, ok, err := h.load(c)
	if !ok {
		return err
	}
	page, err := render.HTML(report)
	if err != nil {
		return h.fail(c, "render html", err)
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (h *ResearchEchoHandler) PDF(c echo.Context) error {
	report, ok, err := h.load(c)
	if !ok {
		return err
	}
	doc, err := render.PDF(report)
	if err != nil {
		return h.fail(c, "render pdf", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+report.ID+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// Feed subscribes the caller to events for its own reports only.
func (h *ResearchEchoHandler) Feed(c echo.Context) error {
	return h.hub.Serve(c.Response(), c.Request(), owner(c))
}

// load reads the :id report; ok=false means a response was already written.
func (h *ResearchEchoHandler) load(c echo.Context) (models.ResearchReport, bool, error) {
	req := &models.ReportIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return models.ResearchReport{}, false, xhttp.BadRequestResponse(c, verr)
	}
	report, err := h.uc.Get(c.Request().Context(), owner(c), req.ID)
	if err != nil {
		return models.ResearchReport{}, false, h.fail(c, "get research", err)
	}
	return report, true, nil
}

func (h *ResearchEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	var ve *models.ValidationError
	var se *models.StoreError
	switch {
	case errors.As(err, &ve):
		return xhttp.InvalidRequestError(ve.Field, ve.Error())
	case errors.Is(err, models.ErrInvalidRequest):
		return xhttp.InvalidRequestError("", err.Error())
	case errors.Is(err, models.ErrReportNotFound):
		return xhttp.NotFoundError("report not found")
	case errors.As(err, &se):
		return xhttp.StoreUnavailableError("report store unavailable").WithError(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return xhttp.CancelledError("request cancelled").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

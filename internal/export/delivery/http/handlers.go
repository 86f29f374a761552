package http

import (
	"net/http"

	"github.com/amankumarsingh77/slidecast/internal/export"
	"github.com/amankumarsingh77/slidecast/internal/models"
	"github.com/amankumarsingh77/slidecast/pkg/httpErrors"
	"github.com/amankumarsingh77/slidecast/pkg/logger"
	"github.com/amankumarsingh77/slidecast/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type exportHandler struct {
	exportUC export.UseCase
	logger   logger.Logger
}

func NewExportHandler(exportUC export.UseCase, log logger.Logger) export.Handler {
	return &exportHandler{
		exportUC: exportUC,
		logger:   log,
	}
}

func (h *exportHandler) SubmitExport() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.ExportInput{}
		if err := utils.ReadRequest(c, input); err != nil {
			h.logger.Warnf("SubmitExport RequestID: %s - %v", utils.GetRequestID(c), err)
			return c.JSON(httpErrors.ErrorResponse(badRequest(err)))
		}
		job, err := h.exportUC.SubmitExport(c.Request().Context(), input)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusAccepted, job)
	}
}

func (h *exportHandler) GetJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.exportUC.GetJob(c.Request().Context(), c.Param("job_id"))
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *exportHandler) CancelJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.exportUC.CancelJob(c.Request().Context(), c.Param("job_id"))
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusAccepted, job)
	}
}

func (h *exportHandler) GetActiveJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := h.exportUC.GetActiveJob(c.Request().Context(), c.Param("presentation_id"))
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *exportHandler) GetVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		artifact, err := h.exportUC.GetArtifact(c.Request().Context(), c.Param("presentation_id"))
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(err))
		}
		if artifact.RedirectURL != "" {
			return c.Redirect(http.StatusFound, artifact.RedirectURL)
		}
		return c.File(artifact.Path)
	}
}

func (h *exportHandler) GetHistory() echo.HandlerFunc {
	return func(c echo.Context) error {
		pq, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(badRequest(err)))
		}
		history, err := h.exportUC.GetHistory(c.Request().Context(), c.Param("presentation_id"), pq)
		if err != nil {
			return c.JSON(httpErrors.ErrorResponse(err))
		}
		return c.JSON(http.StatusOK, history)
	}
}

func (h *exportHandler) GetDependencies() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, h.exportUC.CheckDependencies(c.Request().Context()))
	}
}

// badRequest reports bind, validation and query errors as 400.
func badRequest(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErrors.NewRestErrorWithMessage(http.StatusBadRequest, httpErrors.ErrBadRequest,
			errors.Errorf("invalid request payload: %v", httpErr.Message))
	}
	if _, ok := err.(httpErrors.RestErr); ok {
		return err
	}
	return httpErrors.NewRestErrorWithMessage(http.StatusBadRequest, httpErrors.ErrBadRequest, err)
}

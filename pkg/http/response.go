package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse wraps data in the standard envelope.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{
		Rows:  rows,
		Total: total,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

func CreatedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusCreated, data)
}

// BadRequestResponse writes field validation failures.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// ErrorResponse writes one or more application errors. The status of the
// first error wins.
func ErrorResponse(c echo.Context, errs ...*AppError) error {
	if len(errs) == 0 {
		return DataResponse(c, http.StatusInternalServerError, []*AppError{InternalError("internal error")})
	}
	return DataResponse(c, errs[0].Status, errs)
}

// PartialResponse reports a failure next to a result that was still produced.
func PartialResponse(c echo.Context, appErr *AppError, result interface{}) error {
	return DataResponse(c, appErr.Status, &PartialDataResponse{
		Errors: []*AppError{appErr},
		Report: result,
	})
}

// AppErrorResponse writes err when it is an *AppError, otherwise a generic 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(c, appErr)
	}
	return ErrorResponse(c)
}

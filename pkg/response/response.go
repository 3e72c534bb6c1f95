package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/matokeo-app/matokeo-api/pkg/errors"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Data       interface{} `json:"data,omitempty"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Meta       interface{} `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Data: data})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Paginated(c *gin.Context, data interface{}, page, pageSize, totalCount int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, Envelope{
		Data: data,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: totalCount,
			TotalPages: totalPages,
		},
	})
}

// Error maps any error to the envelope, unwrapping application errors
// to their code and status.
func Error(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	c.JSON(appErr.Status, Envelope{
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
	})
}

// ValidationError reports a 400 with per-field details.
func ValidationError(c *gin.Context, details interface{}) {
	c.JSON(http.StatusBadRequest, Envelope{
		Error: &ErrorBody{
			Code:    apperrors.ErrValidation.Code,
			Message: apperrors.ErrValidation.Message,
			Details: details,
		},
	})
}

package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finquest-server/internal/app"
)

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeInvalidCredentials = 40001
	CodeConflict           = 40002
	CodeUnauthorized       = 40100
	CodeNotFound           = 40400
	CodeInternalServer     = 50000
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	UserID  uint        `json:"userId,omitempty"`
	Token   string      `json:"token,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Message(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    CodeOK,
		Message: message,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// FromError maps a service error to a response. Infrastructure errors never
// leak their text; fallback is used instead.
func FromError(c *gin.Context, err error, fallback string) {
	switch app.KindOf(err) {
	case app.KindInvalidInput:
		Error(c, http.StatusBadRequest, CodeBadRequest, err.Error())
	case app.KindConflict:
		Error(c, http.StatusBadRequest, CodeConflict, err.Error())
	case app.KindUnauthorized:
		Error(c, http.StatusBadRequest, CodeInvalidCredentials, err.Error())
	case app.KindNotFound:
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	default:
		_ = c.Error(err)
		message := fallback
		var appErr *app.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		Error(c, http.StatusInternalServerError, CodeInternalServer, message)
	}
}

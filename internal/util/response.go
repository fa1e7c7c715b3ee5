package util

import (
	"errors"
	"net/http"
	"survey_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrSurveyNotFound, http.StatusNotFound},
	{ErrSectionNotFound, http.StatusNotFound},
	{ErrQuestionNotFound, http.StatusNotFound},
	{ErrInvitationNotFound, http.StatusNotFound},
	{ErrTemplateNotFound, http.StatusNotFound},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrSurveyInactive, http.StatusForbidden},
	{ErrPermissionDenied, http.StatusForbidden},
	{ErrInvitationUsed, http.StatusBadRequest},
	{ErrInvitationMismatch, http.StatusBadRequest},
	{ErrNoRecipients, http.StatusBadRequest},
	{ErrEmptySubmission, http.StatusBadRequest},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrSlugTaken, http.StatusConflict},
	{ErrDraftStoreDisabled, http.StatusServiceUnavailable},
}

// HandleError 把业务错误映射为 HTTP 状态码，未知错误记录日志后返回 500
func HandleError(c *gin.Context, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		ErrorWithData(c, http.StatusBadRequest, "validation failed", validationErr.Violations)
		return
	}

	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		Error(c, http.StatusConflict, conflictErr.Error())
		return
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			Error(c, s.status, s.err.Error())
			return
		}
	}

	var txErr *TransactionError
	if errors.As(err, &txErr) {
		logger.Log.Error("transaction rolled back",
			zap.Uint("surveyId", txErr.SurveyID),
			zap.String("op", txErr.Op),
			zap.Error(txErr.Err),
		)
		InternalServerError(c)
		return
	}

	LogInternalError(c, err)
}

package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleError(c, err)
	return w
}

func TestHandleErrorStatus(t *testing.T) {
	v := &ValidationError{}
	v.Add("label", "must not be empty")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", v, http.StatusBadRequest},
		{"conflict", &ConflictError{SurveyID: 3}, http.StatusConflict},
		{"not found", ErrSurveyNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", ErrQuestionNotFound), http.StatusNotFound},
		{"inactive", ErrSurveyInactive, http.StatusForbidden},
		{"used invitation", ErrInvitationUsed, http.StatusBadRequest},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"slug taken", ErrSlugTaken, http.StatusConflict},
		{"draft store", ErrDraftStoreDisabled, http.StatusServiceUnavailable},
		{"transaction", &TransactionError{SurveyID: 1, Op: "insert question", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, handle(tt.err).Code)
		})
	}
}

func TestHandleErrorListsViolations(t *testing.T) {
	v := &ValidationError{}
	v.Add("questions[0].label", "must not be empty")
	v.Add("questions[1].options", "required for %s questions", "single")

	w := handle(v)
	var body struct {
		Code int          `json:"code"`
		Data []FieldError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Equal(t, []FieldError{
		{Field: "questions[0].label", Message: "must not be empty"},
		{Field: "questions[1].options", Message: "required for single questions"},
	}, body.Data)
}

func TestValidationErrorErrIsNilWhenEmpty(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.Err())

	var nilErr *ValidationError
	assert.NoError(t, nilErr.Err())

	v.Merge("questions[2]", &ValidationError{Violations: []FieldError{{Field: "type", Message: "bad"}}})
	require.Error(t, v.Err())
	assert.Equal(t, "questions[2].type", v.Violations[0].Field)
}

func TestJWTRoundTrip(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	tok, err := GenerateJWT(9, "admin", "a@example.com", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	_, err = ParseJWT(tok, "wrong-secret")
	assert.Error(t, err)
}

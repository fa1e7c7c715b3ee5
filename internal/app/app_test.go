package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"survey_backend/internal/config"
	"survey_backend/internal/util"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	app   *App
	token string
}

func newTestApp(t *testing.T) *client {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	dir := t.TempDir()

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", DBName: fmt.Sprintf("file:app_%d?mode=memory&cache=shared", time.Now().UnixNano())},
		Redis:    config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port},
		JWT:      config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpireTime: time.Hour},
		Admin:    config.AdminConfig{Name: "Admin", Email: "admin@example.com", Password: "s3cret-pass"},
		Invitation: config.InvitationConfig{
			BaseURL:     "https://survey.example.com",
			Concurrency: 2,
		},
		Storage:   config.StorageConfig{Type: "local", LocalPath: filepath.Join(dir, "exports")},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{Read: 1000, Write: 1000, BruteForce: 1000},
		Log:       config.LogConfig{Level: "error", File: filepath.Join(dir, "app.log"), MaxSize: 1},
		Lock:      config.LockConfig{TTLSeconds: 5},
	}

	a := NewApp(cfg)
	t.Cleanup(func() { a.Close(context.Background()) })
	return &client{t: t, app: a}
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.app.Router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (c *client) login() {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "s3cret-pass",
	})
	require.Equal(c.t, http.StatusOK, status, env.Message)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &res))
	c.token = res.Token
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthEndpoints(t *testing.T) {
	c := newTestApp(t)

	status, _ := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := c.do(http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"redis":"up"`)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c := newTestApp(t)

	status, _ := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.do(http.MethodGet, "/api/admin/surveys", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSurveyLifecycle(t *testing.T) {
	c := newTestApp(t)
	c.login()

	status, env := c.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "admin@example.com")

	// 创建问卷
	status, env = c.do(http.MethodPost, "/api/admin/surveys", map[string]interface{}{
		"slug": "commute", "title": "Commute", "isActive": true,
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var survey struct {
		ID uint `json:"id"`
	}
	decode(t, env, &survey)

	status, _ = c.do(http.MethodPost, "/api/admin/surveys", map[string]interface{}{"slug": "commute", "title": "Again"})
	assert.Equal(t, http.StatusConflict, status)

	// 校验失败时列出全部错误
	status, env = c.do(http.MethodPost, "/api/admin/questions/bulk", map[string]interface{}{
		"surveyId": survey.ID,
		"items": []map[string]interface{}{
			{"label": "", "type": "text"},
			{"label": "Pick", "type": "single"},
		},
	})
	require.Equal(t, http.StatusBadRequest, status)
	var violations []util.FieldError
	decode(t, env, &violations)
	assert.Len(t, violations, 2)

	// 保存题目
	status, env = c.do(http.MethodPost, "/api/admin/questions/bulk", map[string]interface{}{
		"surveyId": survey.ID,
		"items": []map[string]interface{}{
			{"label": "Do you drive?", "type": "single", "required": true, "options": []string{"Yes", "No"},
				"conditionalLogic": map[string]interface{}{"rules": []map[string]interface{}{{"answer": "No", "nextQuestionOrd": 3}}}},
			{"label": "Car brand", "type": "text", "required": true},
			{"label": "Score", "type": "likert", "required": true, "options": []string{"1", "2", "3"}},
		},
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var saved struct {
		Inserted  int `json:"inserted"`
		Questions []struct {
			ID  uint `json:"id"`
			Ord int  `json:"ord"`
		} `json:"questions"`
	}
	decode(t, env, &saved)
	assert.Equal(t, 3, saved.Inserted)
	first := saved.Questions[0].ID

	// 答题端
	status, env = c.do(http.MethodGet, "/api/surveys/commute", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"conditionalLogic":{"rules":[{"answer":"No","nextQuestionOrd":3}]}`)

	status, env = c.do(http.MethodPost, "/api/surveys/commute/flow", map[string]interface{}{"questionId": first, "value": "No"})
	require.Equal(t, http.StatusOK, status)
	var res struct {
		Show []int `json:"show"`
		Hide []int `json:"hide"`
	}
	decode(t, env, &res)
	assert.Equal(t, []int{3}, res.Show)
	assert.Equal(t, []int{2}, res.Hide)

	// 草稿
	status, _ = c.do(http.MethodPut, "/api/surveys/commute/drafts/dev-1", map[string]interface{}{
		"email": "r@example.com", "answers": []map[string]interface{}{{"questionId": first, "value": "No"}},
	})
	require.Equal(t, http.StatusOK, status)
	status, env = c.do(http.MethodGet, "/api/surveys/commute/drafts/dev-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "r@example.com")

	// 提交
	status, env = c.do(http.MethodPost, "/api/responses", map[string]interface{}{
		"surveySlug": "commute",
		"email":      "r@example.com",
		"deviceId":   "dev-1",
		"answers": []map[string]interface{}{
			{"questionId": first, "value": "No"},
			{"questionId": saved.Questions[2].ID, "value": "2"},
		},
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = c.do(http.MethodGet, "/api/surveys/commute/drafts/dev-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, env.Data)

	// 统计和导出
	status, env = c.do(http.MethodGet, fmt.Sprintf("/api/admin/surveys/%d/stats", survey.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"responseCount":1`)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/admin/surveys/%d/export?access_token=%s", survey.ID, c.token), nil)
	w := httptest.NewRecorder()
	c.app.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.MimeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "commute-export-")

	// 删除
	status, _ = c.do(http.MethodDelete, fmt.Sprintf("/api/admin/surveys/%d", survey.ID), nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = c.do(http.MethodGet, "/api/surveys/commute", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInvitationFlow(t *testing.T) {
	c := newTestApp(t)
	c.login()

	status, env := c.do(http.MethodPost, "/api/admin/surveys", map[string]interface{}{"slug": "feedback", "title": "Feedback"})
	require.Equal(t, http.StatusCreated, status)
	var survey struct {
		ID uint `json:"id"`
	}
	decode(t, env, &survey)

	status, env = c.do(http.MethodPost, fmt.Sprintf("/api/admin/surveys/%d/invitations", survey.ID), map[string]interface{}{
		"emails": []string{"x@example.com", "y@example.com"},
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	var batch struct {
		Sent   int `json:"sent"`
		Failed int `json:"failed"`
	}
	decode(t, env, &batch)
	assert.Equal(t, 2, batch.Sent)
	assert.Equal(t, 0, batch.Failed)

	status, env = c.do(http.MethodPost, "/api/admin/invitations", map[string]string{"surveySlug": "feedback", "email": "z@example.com"})
	require.Equal(t, http.StatusCreated, status)
	var link struct {
		Token string `json:"token"`
	}
	decode(t, env, &link)

	status, env = c.do(http.MethodGet, "/api/invitations/"+link.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"surveySlug":"feedback"`)

	status, _ = c.do(http.MethodGet, "/api/invitations/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

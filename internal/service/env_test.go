package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"survey_backend/internal/cache"
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/pkg/database"
	mailer "survey_backend/pkg/mail"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail map[string]bool
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[msg.To] {
		return "", errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeSender) Close() {}

type testEnv struct {
	db          *gorm.DB
	redis       *miniredis.Miniredis
	sender      *fakeSender
	locker      *cache.MemoryLocker
	surveys     *SurveyService
	sections    *SectionService
	questions   *QuestionService
	flow        *FlowService
	drafts      *DraftService
	invitations *InvitationService
	responses   *ResponseService
	exports     *ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver: "sqlite",
		DBName: fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name),
	}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	surveyRepo := repository.NewSurveyRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	responseRepo := repository.NewResponseRepository(db)

	env := &testEnv{
		db:     db,
		redis:  mr,
		sender: &fakeSender{fail: map[string]bool{}},
		locker: cache.NewMemoryLocker(),
	}
	env.surveys = NewSurveyService(surveyRepo, sectionRepo, questionRepo)
	env.sections = NewSectionService(sectionRepo, surveyRepo)
	env.questions = NewQuestionService(questionRepo, surveyRepo, env.locker)
	env.flow = NewFlowService(env.surveys)
	env.drafts = NewDraftService(cache.NewDraftCache(rdb), surveyRepo)
	env.invitations = NewInvitationService(invitationRepo, surveyRepo, env.sender, &config.InvitationConfig{
		BaseURL:     "https://survey.example.com/",
		Concurrency: 2,
	})
	env.responses = NewResponseService(responseRepo, invitationRepo, questionRepo, env.surveys, env.drafts)
	env.exports = NewExportService(surveyRepo, questionRepo, responseRepo, nil, false)
	return env
}

func (e *testEnv) survey(t *testing.T, slug string, active bool) *model.Survey {
	t.Helper()
	s, err := e.surveys.Create(SurveyInput{Slug: slug, Title: "Survey " + slug, IsActive: &active})
	require.NoError(t, err)
	return s
}

// branching 五道题：第 1 题选 "No" 跳到第 4 题
func branching() []model.Question {
	return []model.Question{
		{Label: "Do you drive?", Type: model.QuestionSingle, Required: true,
			Options: []string{"Yes", "No"},
			Rules:   []model.Rule{{Answer: "No", NextQuestionOrd: 4}}},
		{Label: "Car brand", Type: model.QuestionText, Required: true},
		{Label: "Yearly km", Type: model.QuestionNumber, Required: true},
		{Label: "Comments", Type: model.QuestionText},
		{Label: "Score", Type: model.QuestionLikert, Required: true, Options: []string{"1", "2", "3", "4", "5"}},
	}
}

package repository

import (
	"context"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurveyFindBySlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewSurveyRepository(db)
	created := seedSurvey(t, db, "customer-2026")

	got, err := repo.FindBySlug("customer-2026")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.FindBySlug("missing")
	assert.ErrorIs(t, err, util.ErrSurveyNotFound)

	taken, err := repo.SlugTaken("customer-2026", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.SlugTaken("customer-2026", created.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSurveyUpdateCanDeactivate(t *testing.T) {
	db := newTestDB(t)
	repo := NewSurveyRepository(db)
	s := seedSurvey(t, db, "toggle")

	s.IsActive = false
	s.Title = "Renamed"
	require.NoError(t, repo.Update(s))

	got, err := repo.FindByID(s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Renamed", got.Title)
}

func TestSurveyListAndStats(t *testing.T) {
	db := newTestDB(t)
	surveys := NewSurveyRepository(db)
	responses := NewResponseRepository(db)
	invitations := NewInvitationRepository(db)
	s := seedSurvey(t, db, "stats")
	empty := seedSurvey(t, db, "empty")

	_, err := NewQuestionRepository(db).Reconcile(context.Background(), s.ID, []model.Question{textQuestion(0, "Q1")})
	require.NoError(t, err)

	inv := &model.Invitation{SurveyID: s.ID, Email: "a@example.com", Token: model.GenerateUUID()}
	require.NoError(t, invitations.CreateBatch([]*model.Invitation{inv}))
	require.NoError(t, responses.Create(context.Background(), &model.Response{
		SurveyID:     s.ID,
		Email:        "a@example.com",
		InvitationID: &inv.ID,
		SubmittedAt:  time.Now(),
	}))

	list, err := surveys.ListWithCounts()
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[uint]model.SurveySummary{}
	for _, row := range list {
		byID[row.ID] = row
	}
	assert.Equal(t, int64(1), byID[s.ID].ResponseCount)
	assert.Equal(t, int64(1), byID[s.ID].InvitationCount)
	assert.Zero(t, byID[empty.ID].ResponseCount)

	stats, err := surveys.Stats(s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.QuestionCount)
	assert.Equal(t, int64(1), stats.ResponseCount)
	assert.Equal(t, int64(1), stats.UsedInvitations)
}

func TestSurveyDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewSurveyRepository(db)
	s := seedSurvey(t, db, "cascade")

	_, err := NewQuestionRepository(db).Reconcile(context.Background(), s.ID, []model.Question{textQuestion(0, "Q1")})
	require.NoError(t, err)
	require.NoError(t, NewResponseRepository(db).Create(context.Background(), &model.Response{
		SurveyID:    s.ID,
		SubmittedAt: time.Now(),
		Answers:     []model.Answer{{QuestionID: 1, ValueText: "x"}},
	}))

	require.NoError(t, repo.Delete(s.ID))

	for _, m := range []interface{}{&model.Question{}, &model.Response{}, &model.Answer{}, &model.Survey{}} {
		var count int64
		require.NoError(t, db.Model(m).Count(&count).Error)
		assert.Zero(t, count)
	}

	assert.ErrorIs(t, repo.Delete(s.ID), util.ErrSurveyNotFound)
}

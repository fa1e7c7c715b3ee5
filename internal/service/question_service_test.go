package service

import (
	"context"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelsOf(qs []model.Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.Label)
	}
	return out
}

func TestQuestionSaveAssignsIDsAndOrd(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)

	res, err := env.questions.Save(context.Background(), s.ID, branching())
	require.NoError(t, err)

	assert.Equal(t, 5, res.Inserted)
	assert.Empty(t, res.Warnings)
	for i, q := range res.Questions {
		assert.NotZero(t, q.ID)
		assert.Equal(t, i+1, q.Ord)
	}

	stored, err := env.questions.List(s.ID)
	require.NoError(t, err)
	assert.Equal(t, labelsOf(res.Questions), labelsOf(stored))
}

func TestQuestionSaveTwiceIsNoop(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	first, err := env.questions.Save(ctx, s.ID, branching())
	require.NoError(t, err)

	second, err := env.questions.Save(ctx, s.ID, first.Questions)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted+second.Updated+second.Deleted)
	assert.Equal(t, 5, second.Unchanged)
}

func TestQuestionSaveReportsDanglingRule(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)

	qs := branching()
	qs[0].Rules = []model.Rule{{Answer: "No", NextQuestionOrd: 9}}

	res, err := env.questions.Save(context.Background(), s.ID, qs)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Warnings[0].QuestionOrd)
	assert.Equal(t, 9, res.Warnings[0].TargetOrd)
}

func TestQuestionSaveConflictWhileLocked(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	release, ok, err := env.locker.TryLock(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = env.questions.Save(ctx, s.ID, branching())
	var conflict *util.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, s.ID, conflict.SurveyID)

	release()
	_, err = env.questions.Save(ctx, s.ID, branching())
	assert.NoError(t, err)
}

func TestQuestionSaveReleasesLockOnValidationError(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	_, err := env.questions.Save(ctx, s.ID, []model.Question{{Type: model.QuestionText}})
	var v *util.ValidationError
	require.ErrorAs(t, err, &v)

	release, ok, err := env.locker.TryLock(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	release()
}

func TestQuestionMoveAndRemove(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	saved, err := env.questions.Save(ctx, s.ID, branching())
	require.NoError(t, err)

	moved, err := env.questions.Move(ctx, s.ID, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Score", "Do you drive?", "Car brand", "Yearly km", "Comments"}, labelsOf(moved.Questions))
	assert.Equal(t, 0, moved.Inserted)
	assert.Equal(t, 5, moved.Updated)

	removed, err := env.questions.Remove(ctx, s.ID, saved.Questions[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed.Deleted)
	assert.Equal(t, []string{"Score", "Do you drive?", "Yearly km", "Comments"}, labelsOf(removed.Questions))
	for i, q := range removed.Questions {
		assert.Equal(t, i+1, q.Ord)
	}

	_, err = env.questions.Remove(ctx, s.ID, saved.Questions[1].ID)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestQuestionMoveOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	_, err := env.questions.Save(ctx, s.ID, branching())
	require.NoError(t, err)

	_, err = env.questions.Move(ctx, s.ID, 0, 5)
	var v *util.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "to", v.Violations[0].Field)
}

func TestQuestionSetOrder(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	saved, err := env.questions.Save(ctx, s.ID, branching())
	require.NoError(t, err)

	res, err := env.questions.SetOrder(ctx, s.ID, saved.Questions[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Car brand", "Yearly km", "Do you drive?", "Comments", "Score"}, labelsOf(res.Questions))

	_, err = env.questions.SetOrder(ctx, s.ID, 9999, 1)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestQuestionAppendTemplate(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	ctx := context.Background()

	section, err := env.sections.Create(s.ID, "Feedback")
	require.NoError(t, err)

	_, err = env.questions.Save(ctx, s.ID, branching())
	require.NoError(t, err)

	res, err := env.questions.AppendTemplate(ctx, s.ID, "nps", &section.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	require.Len(t, res.Questions, 7)
	assert.Equal(t, 6, res.Questions[5].Ord)
	require.NotNil(t, res.Questions[5].SectionID)
	assert.Equal(t, section.ID, *res.Questions[5].SectionID)

	_, err = env.questions.AppendTemplate(ctx, s.ID, "nope", nil)
	assert.ErrorIs(t, err, util.ErrTemplateNotFound)
}

func TestQuestionSaveUnknownSurvey(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.questions.Save(context.Background(), 404, branching())
	assert.ErrorIs(t, err, util.ErrSurveyNotFound)

	_, err = env.questions.List(404)
	assert.ErrorIs(t, err, util.ErrSurveyNotFound)
}

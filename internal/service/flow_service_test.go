package service

import (
	"context"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowEvaluate(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	saved, err := env.questions.Save(context.Background(), s.ID, branching())
	require.NoError(t, err)
	first := saved.Questions[0].ID

	tests := []struct {
		name     string
		value    string
		show     []int
		hide     []int
		required []int
	}{
		{"branch", "No", []int{4, 5}, []int{2, 3}, []int{5}},
		{"no match", "Yes", []int{2}, []int{}, []int{2}},
		{"case sensitive", "no", []int{2}, []int{}, []int{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.flow.Evaluate("commute", first, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.show, res.Show)
			assert.Equal(t, tt.hide, res.Hide)
			assert.Equal(t, tt.required, res.Required)
		})
	}
}

func TestFlowEvaluateErrors(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "closed", false)
	_, err := env.questions.Save(context.Background(), s.ID, branching())
	require.NoError(t, err)

	_, err = env.flow.Evaluate("closed", 1, "No")
	assert.ErrorIs(t, err, util.ErrSurveyInactive)

	_, err = env.flow.Evaluate("missing", 1, "No")
	assert.ErrorIs(t, err, util.ErrSurveyNotFound)

	env.survey(t, "open", true)
	_, err = env.flow.Evaluate("open", 12345, "No")
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestFlowEvaluateDanglingTarget(t *testing.T) {
	env := newTestEnv(t)
	s := env.survey(t, "commute", true)
	qs := branching()
	qs[0].Rules = []model.Rule{{Answer: "No", NextQuestionOrd: 8}}
	saved, err := env.questions.Save(context.Background(), s.ID, qs)
	require.NoError(t, err)

	res, err := env.flow.Evaluate("commute", saved.Questions[0].ID, "No")
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, 8, res.Warning.TargetOrd)
	assert.Equal(t, []int{2, 3, 4, 5}, res.Hide)
	assert.Empty(t, res.Show)
}

package reconcile

import (
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(id uint, ord int, label string) model.Question {
	return model.Question{
		BaseModel: model.BaseModel{ID: id},
		SurveyID:  1,
		Ord:       ord,
		Label:     label,
		Type:      model.QuestionText,
	}
}

func persistedSet() []model.Question {
	return []model.Question{
		question(10, 1, "A"),
		question(11, 2, "B"),
		question(12, 3, "C"),
	}
}

func ids(qs []*model.Question) []uint {
	out := make([]uint, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestBuildDeletesMissingItem(t *testing.T) {
	desired := []model.Question{question(10, 1, "A"), question(12, 2, "C")}

	plan, err := Build(1, persistedSet(), desired, nil)
	require.NoError(t, err)

	assert.Equal(t, []uint{11}, plan.Deletes)
	assert.Empty(t, plan.Inserts)
	assert.Equal(t, []uint{12}, ids(plan.Updates))
	assert.Equal(t, []uint{10}, ids(plan.Unchanged))
}

func TestBuildAssignsContiguousOrd(t *testing.T) {
	desired := []model.Question{
		question(12, 9, "C"),
		question(0, 0, "new"),
		question(10, 4, "A"),
	}

	plan, err := Build(1, persistedSet(), desired, nil)
	require.NoError(t, err)

	require.Len(t, plan.Desired, 3)
	for i, q := range plan.Desired {
		assert.Equal(t, i+1, q.Ord)
		assert.Equal(t, uint(1), q.SurveyID)
	}
	assert.Equal(t, []uint{0}, ids(plan.Inserts))
	assert.Equal(t, "new", plan.Inserts[0].Label)
	assert.Equal(t, []uint{11}, plan.Deletes)
}

func TestBuildIsIdempotent(t *testing.T) {
	plan, err := Build(1, persistedSet(), persistedSet(), nil)
	require.NoError(t, err)

	assert.True(t, plan.Empty())
	assert.Len(t, plan.Unchanged, 3)
}

func TestBuildUnknownIDIsInserted(t *testing.T) {
	desired := append(persistedSet(), question(99, 4, "from elsewhere"))

	plan, err := Build(1, persistedSet(), desired, nil)
	require.NoError(t, err)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, uint(0), plan.Inserts[0].ID)
	assert.Empty(t, plan.Deletes)
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	desired := []model.Question{question(10, 1, "A"), question(10, 2, "A again")}

	_, err := Build(1, persistedSet(), desired, nil)
	var v *util.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "questions[1].id", v.Violations[0].Field)
}

func TestBuildCollectsAllViolations(t *testing.T) {
	bad := question(0, 0, "")
	bad.Type = model.QuestionSingle
	desired := []model.Question{question(10, 1, "A"), bad}

	_, err := Build(1, persistedSet(), desired, nil)
	var v *util.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Len(t, v.Violations, 2)
}

func TestBuildChecksSectionOwnership(t *testing.T) {
	foreign := uint(77)
	own := uint(5)
	a := question(10, 1, "A")
	a.SectionID = &own
	b := question(11, 2, "B")
	b.SectionID = &foreign

	_, err := Build(1, persistedSet(), []model.Question{a, b}, []uint{own})
	var v *util.ValidationError
	require.ErrorAs(t, err, &v)
	require.Len(t, v.Violations, 1)
	assert.Equal(t, "questions[1].sectionId", v.Violations[0].Field)
}

func TestBuildReportsDanglingRulesAsWarnings(t *testing.T) {
	a := question(10, 1, "A")
	a.Type = model.QuestionSingle
	a.Options = []string{"y", "n"}
	a.Rules = []model.Rule{{Answer: "n", NextQuestionOrd: 7}}

	plan, err := Build(1, persistedSet(), []model.Question{a, question(11, 2, "B")}, nil)
	require.NoError(t, err)

	require.Len(t, plan.Warnings, 1)
	assert.Equal(t, 7, plan.Warnings[0].TargetOrd)
}

func TestBuildDetectsFieldChanges(t *testing.T) {
	section := uint(3)
	changed := persistedSet()
	changed[0].Required = true
	changed[1].SectionID = &section
	changed[2].Label = "  C  "

	plan, err := Build(1, persistedSet(), changed, nil)
	require.NoError(t, err)

	assert.Equal(t, []uint{10, 11}, ids(plan.Updates))
	assert.Equal(t, []uint{12}, ids(plan.Unchanged))
	assert.Equal(t, "C", plan.Desired[2].Label)
}

package editing

import (
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTemplates(t *testing.T) {
	names := make([]string, 0)
	for _, tpl := range Templates() {
		names = append(names, tpl.Name)
	}
	assert.Equal(t, []string{"nps", "likert5", "demographics", "city"}, names)

	nps, err := LookupTemplate("nps")
	require.NoError(t, err)
	require.Len(t, nps.Questions, 2)
	assert.Equal(t, model.QuestionLikert, nps.Questions[0].Type)
	assert.Len(t, nps.Questions[0].Options, 11)

	city, err := LookupTemplate("city")
	require.NoError(t, err)
	assert.Len(t, city.Questions[0].Options, 81)
}

func TestLookupUnknownTemplate(t *testing.T) {
	_, err := LookupTemplate("matrix")
	assert.ErrorIs(t, err, util.ErrTemplateNotFound)
}

func TestParseTemplatesRejectsInvalidQuestion(t *testing.T) {
	_, err := ParseTemplates([]byte(`
- name: broken
  questions:
    - label: Pick one
      type: single
`))
	assert.Error(t, err)
}

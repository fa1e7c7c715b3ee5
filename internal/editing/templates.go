package editing

import (
	_ "embed"
	"fmt"
	"survey_backend/internal/model"
	"survey_backend/internal/util"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type TemplateQuestion struct {
	Label    string             `yaml:"label" json:"label"`
	Type     model.QuestionType `yaml:"type" json:"type"`
	Required bool               `yaml:"required" json:"required"`
	Options  []string           `yaml:"options" json:"options"`
}

type Template struct {
	Name      string             `yaml:"name" json:"name"`
	Title     string             `yaml:"title" json:"title"`
	Questions []TemplateQuestion `yaml:"questions" json:"questions"`
}

var catalog = mustParseTemplates(templatesYAML)

func mustParseTemplates(data []byte) []Template {
	templates, err := ParseTemplates(data)
	if err != nil {
		panic(err)
	}
	return templates
}

// ParseTemplates 解析模板定义并校验每道题
func ParseTemplates(data []byte) ([]Template, error) {
	var templates []Template
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, t := range templates {
		for i, q := range t.Questions {
			mq := q.toQuestion(nil)
			if err := mq.Validate(); err != nil {
				return nil, fmt.Errorf("template %s question %d: %w", t.Name, i, err)
			}
		}
	}
	return templates, nil
}

func Templates() []Template {
	out := make([]Template, len(catalog))
	copy(out, catalog)
	return out
}

func LookupTemplate(name string) (Template, error) {
	for _, t := range catalog {
		if t.Name == name {
			return t, nil
		}
	}
	return Template{}, util.ErrTemplateNotFound
}

func (q TemplateQuestion) toQuestion(sectionID *uint) model.Question {
	var options []string
	if len(q.Options) > 0 {
		options = append(options, q.Options...)
	}
	return model.Question{
		SectionID: sectionID,
		Label:     q.Label,
		Type:      q.Type,
		Required:  q.Required,
		Options:   options,
	}
}

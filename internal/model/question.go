package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"survey_backend/internal/util"
	"unicode/utf8"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionNumber   QuestionType = "number"
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionLikert   QuestionType = "likert"
)

var questionTypes = []QuestionType{QuestionText, QuestionNumber, QuestionSingle, QuestionMultiple, QuestionLikert}

func (t QuestionType) Valid() bool {
	for _, qt := range questionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// HasOptions 选择类题型必须提供选项
func (t QuestionType) HasOptions() bool {
	return t == QuestionSingle || t == QuestionMultiple || t == QuestionLikert
}

// Rule 回答与 Answer 完全相等（区分大小写）时跳转到 NextQuestionOrd
type Rule struct {
	Answer          string `json:"answer"`
	NextQuestionOrd int    `json:"nextQuestionOrd"`
}

type ConditionalLogic struct {
	Rules []Rule `json:"rules"`
}

// swagger:model Question
type Question struct {
	BaseModel
	SurveyID  uint                        `gorm:"index;not null" json:"surveyId"`
	SectionID *uint                       `gorm:"index" json:"sectionId"`
	Ord       int                         `gorm:"not null" json:"ord"`
	Label     string                      `gorm:"size:400;not null" json:"label"`
	Type      QuestionType                `gorm:"size:20;not null" json:"type"`
	Required  bool                        `gorm:"not null" json:"required"`
	Options   datatypes.JSONSlice[string] `json:"options"`
	Rules     datatypes.JSONSlice[Rule]   `gorm:"column:conditional_logic" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// MarshalJSON 规则以 conditionalLogic.rules 的形式输出，没有规则时为 null
func (q Question) MarshalJSON() ([]byte, error) {
	type alias Question
	var logic *ConditionalLogic
	if len(q.Rules) > 0 {
		logic = &ConditionalLogic{Rules: q.Rules}
	}
	return json.Marshal(struct {
		alias
		ConditionalLogic *ConditionalLogic `json:"conditionalLogic"`
	}{alias(q), logic})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	type alias Question
	aux := struct {
		*alias
		ConditionalLogic *ConditionalLogic `json:"conditionalLogic"`
	}{alias: (*alias)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	q.Rules = nil
	if aux.ConditionalLogic != nil && len(aux.ConditionalLogic.Rules) > 0 {
		q.Rules = aux.ConditionalLogic.Rules
	}
	return nil
}

// Validate 返回所有不合法的字段，而不只是第一个
func (q *Question) Validate() error {
	v := &util.ValidationError{}

	label := strings.TrimSpace(q.Label)
	if label == "" {
		v.Add("label", "must not be empty")
	} else if utf8.RuneCountInString(label) > util.MaxLabelLength {
		v.Add("label", "must be at most %d characters", util.MaxLabelLength)
	}

	if !q.Type.Valid() {
		v.Add("type", "must be one of text, number, single, multiple, likert")
	}

	switch {
	case q.Type.HasOptions() && len(q.Options) == 0:
		v.Add("options", "required for %s questions", q.Type)
	case q.Type.Valid() && !q.Type.HasOptions() && len(q.Options) > 0:
		v.Add("options", "not allowed for %s questions", q.Type)
	}
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			v.Add(fmt.Sprintf("options[%d]", i), "must not be empty")
		}
	}

	for i, r := range q.Rules {
		field := fmt.Sprintf("conditionalLogic.rules[%d]", i)
		if r.Answer == "" {
			v.Add(field+".answer", "must not be empty")
		}
		if r.NextQuestionOrd < 1 {
			v.Add(field+".nextQuestionOrd", "must be at least 1")
		}
	}

	return v.Err()
}

// ValidateSet 校验整张问卷的题目列表，字段名带上列表下标
func ValidateSet(questions []Question) error {
	v := &util.ValidationError{}
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			v.Merge(fmt.Sprintf("questions[%d]", i), err.(*util.ValidationError))
		}
	}
	return v.Err()
}

// DanglingRules 找出指向不存在位置的规则
func DanglingRules(questions []Question) []*util.ReferenceError {
	positions := make(map[int]bool, len(questions))
	for _, q := range questions {
		positions[q.Ord] = true
	}

	var refs []*util.ReferenceError
	for _, q := range questions {
		for _, r := range q.Rules {
			if !positions[r.NextQuestionOrd] {
				refs = append(refs, &util.ReferenceError{QuestionOrd: q.Ord, TargetOrd: r.NextQuestionOrd})
			}
		}
	}
	return refs
}

// Package flow 计算答题过程中题目的显示与隐藏。
//
// 每次求值只依赖当前题目的位置和回答，不累积之前的结果。
package flow

import (
	"encoding/json"
	"sort"
	"strings"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
)

// Result 一次回答事件的显示变化
type Result struct {
	Show     []int                `json:"show"`
	Hide     []int                `json:"hide"`
	Reset    []int                `json:"reset"`
	Required []int                `json:"required"`
	Matched  *model.Rule          `json:"matched,omitempty"`
	Warning  *util.ReferenceError `json:"warning,omitempty"`
}

type index struct {
	ords     []int
	required map[int]bool
}

func newIndex(questions []model.Question) index {
	idx := index{required: make(map[int]bool, len(questions))}
	for _, q := range questions {
		if _, seen := idx.required[q.Ord]; seen {
			continue
		}
		idx.ords = append(idx.ords, q.Ord)
		idx.required[q.Ord] = q.Required
	}
	sort.Ints(idx.ords)
	return idx
}

func (i index) exists(ord int) bool {
	_, ok := i.required[ord]
	return ok
}

// Evaluate 按列表顺序取第一条与回答完全相等的规则
func Evaluate(questions []model.Question, currentOrd int, answer string, rules []model.Rule) Result {
	for i := range rules {
		if rules[i].Answer == answer {
			return branch(newIndex(questions), currentOrd, rules[i])
		}
	}
	return fallthroughNext(newIndex(questions), currentOrd)
}

// EvaluateSelection 多选题：取第一条回答在所选项中的规则
func EvaluateSelection(questions []model.Question, currentOrd int, selected []string, rules []model.Rule) Result {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	for i := range rules {
		if chosen[rules[i].Answer] {
			return branch(newIndex(questions), currentOrd, rules[i])
		}
	}
	return fallthroughNext(newIndex(questions), currentOrd)
}

// EvaluateQuestion 根据题型选择单值或多选求值
func EvaluateQuestion(questions []model.Question, current model.Question, value string) Result {
	if current.Type == model.QuestionMultiple {
		return EvaluateSelection(questions, current.Ord, DecodeAnswer(value), current.Rules)
	}
	return Evaluate(questions, current.Ord, value, current.Rules)
}

func branch(idx index, currentOrd int, rule model.Rule) Result {
	matched := rule
	res := Result{
		Show:     []int{},
		Hide:     []int{},
		Reset:    []int{},
		Required: []int{},
		Matched:  &matched,
	}

	target := rule.NextQuestionOrd
	if !idx.exists(target) {
		res.Warning = &util.ReferenceError{QuestionOrd: currentOrd, TargetOrd: target}
	}

	for _, p := range idx.ords {
		switch {
		case p > currentOrd && p < target:
			res.Hide = append(res.Hide, p)
			res.Reset = append(res.Reset, p)
		case p >= target:
			res.Show = append(res.Show, p)
			if idx.required[p] {
				res.Required = append(res.Required, p)
			}
		}
	}
	return res
}

func fallthroughNext(idx index, currentOrd int) Result {
	res := Result{
		Show:     []int{},
		Hide:     []int{},
		Reset:    []int{},
		Required: []int{},
	}
	next := currentOrd + 1
	if idx.exists(next) {
		res.Show = append(res.Show, next)
		if idx.required[next] {
			res.Required = append(res.Required, next)
		}
	}
	return res
}

// DecodeAnswer 多选时表单把选项编码为 JSON 数组字符串，单选或文本保持原样
func DecodeAnswer(value string) []string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal([]byte(trimmed), &values); err == nil {
			return values
		}
	}
	if value == "" {
		return nil
	}
	return []string{value}
}

// EncodeAnswer 与 DecodeAnswer 对应
func EncodeAnswer(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	b, _ := json.Marshal(values)
	return string(b)
}

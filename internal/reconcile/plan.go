// Package reconcile 计算一张问卷的题目列表从已保存状态到编辑后状态需要的写操作。
package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
)

// Plan 一次保存需要执行的写操作。Desired 为规范化之后的目标列表，ord 从 1 连续编号。
type Plan struct {
	SurveyID  uint
	Desired   []model.Question
	Inserts   []*model.Question
	Updates   []*model.Question
	Unchanged []*model.Question
	Deletes   []uint
	Warnings  []*util.ReferenceError
}

// Empty 没有任何需要写入的变更
func (p *Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Build 对比已保存的题目和目标列表。
//
// 目标列表中 id 为 0 的题目为新增；id 不属于该问卷的题目同样按新增处理并分配新 id；
// 已保存但不在目标列表中的题目被删除。sectionIDs 为 nil 时不校验分组引用。
func Build(surveyID uint, persisted, desired []model.Question, sectionIDs []uint) (*Plan, error) {
	v := &util.ValidationError{}
	v.Merge("", asValidation(model.ValidateSet(desired)))

	var sections map[uint]bool
	if sectionIDs != nil {
		sections = make(map[uint]bool, len(sectionIDs))
		for _, id := range sectionIDs {
			sections[id] = true
		}
	}

	seen := make(map[uint]int, len(desired))
	for i, q := range desired {
		if q.ID != 0 {
			if first, dup := seen[q.ID]; dup {
				v.Add(fmt.Sprintf("questions[%d].id", i), "duplicates questions[%d]", first)
			} else {
				seen[q.ID] = i
			}
		}
		if sections != nil && q.SectionID != nil && !sections[*q.SectionID] {
			v.Add(fmt.Sprintf("questions[%d].sectionId", i), "section %d does not belong to this survey", *q.SectionID)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	existing := make(map[uint]*model.Question, len(persisted))
	for i := range persisted {
		existing[persisted[i].ID] = &persisted[i]
	}

	plan := &Plan{SurveyID: surveyID, Desired: make([]model.Question, len(desired))}
	retained := make(map[uint]bool, len(desired))

	for i, d := range desired {
		q := normalize(surveyID, i, d)
		if prev, ok := existing[q.ID]; ok && q.ID != 0 {
			q.CreatedAt = prev.CreatedAt
			q.UpdatedAt = prev.UpdatedAt
			retained[q.ID] = true
			plan.Desired[i] = q
			if sameContent(prev, &q) {
				plan.Unchanged = append(plan.Unchanged, &plan.Desired[i])
			} else {
				plan.Updates = append(plan.Updates, &plan.Desired[i])
			}
			continue
		}
		q.ID = 0
		plan.Desired[i] = q
		plan.Inserts = append(plan.Inserts, &plan.Desired[i])
	}

	for _, p := range persisted {
		if !retained[p.ID] {
			plan.Deletes = append(plan.Deletes, p.ID)
		}
	}
	sort.Slice(plan.Deletes, func(i, j int) bool { return plan.Deletes[i] < plan.Deletes[j] })

	plan.Warnings = model.DanglingRules(plan.Desired)
	return plan, nil
}

func asValidation(err error) *util.ValidationError {
	if err == nil {
		return nil
	}
	return err.(*util.ValidationError)
}

func normalize(surveyID uint, i int, q model.Question) model.Question {
	q.SurveyID = surveyID
	q.Ord = i + 1
	q.Label = strings.TrimSpace(q.Label)
	if !q.Type.HasOptions() || len(q.Options) == 0 {
		q.Options = nil
	}
	if len(q.Rules) == 0 {
		q.Rules = nil
	}
	return q
}

func sameContent(a, b *model.Question) bool {
	if a.Ord != b.Ord || a.Label != b.Label || a.Type != b.Type || a.Required != b.Required {
		return false
	}
	if (a.SectionID == nil) != (b.SectionID == nil) {
		return false
	}
	if a.SectionID != nil && *a.SectionID != *b.SectionID {
		return false
	}
	if len(a.Options) != len(b.Options) || len(a.Rules) != len(b.Rules) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	for i := range a.Rules {
		if a.Rules[i] != b.Rules[i] {
			return false
		}
	}
	return true
}

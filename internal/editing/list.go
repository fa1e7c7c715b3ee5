// Package editing 后台编辑问卷时对题目列表的操作。
// List 不可变，每个操作返回新的列表，位置始终从 1 连续编号。
package editing

import (
	"sort"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
)

type List struct {
	items []model.Question
}

// NewList 按 ord 排序后重新编号
func NewList(questions []model.Question) List {
	items := make([]model.Question, len(questions))
	copy(items, questions)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Ord < items[j].Ord })
	renumber(items)
	return List{items: items}
}

func (l List) Len() int {
	return len(l.items)
}

func (l List) Items() []model.Question {
	out := make([]model.Question, len(l.items))
	copy(out, l.items)
	return out
}

func (l List) Add(q model.Question) List {
	items := append(l.Items(), q)
	renumber(items)
	return List{items: items}
}

func (l List) Remove(index int) (List, error) {
	if index < 0 || index >= len(l.items) {
		return l, outOfRange("index", index, len(l.items)-1)
	}
	items := l.Items()
	items = append(items[:index], items[index+1:]...)
	renumber(items)
	return List{items: items}, nil
}

// RemoveID 删除指定 id 的题目
func (l List) RemoveID(id uint) (List, error) {
	for i, q := range l.items {
		if q.ID == id && id != 0 {
			return l.Remove(i)
		}
	}
	return l, util.ErrQuestionNotFound
}

// Move 拖拽排序：把 from 位置的题目移到 to，下标从 0 开始
func (l List) Move(from, to int) (List, error) {
	n := len(l.items)
	v := &util.ValidationError{}
	if from < 0 || from >= n {
		v.Add("from", "must be between 0 and %d", n-1)
	}
	if to < 0 || to >= n {
		v.Add("to", "must be between 0 and %d", n-1)
	}
	if err := v.Err(); err != nil {
		return l, err
	}

	items := l.Items()
	moved := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]model.Question{moved}, items[to:]...)...)
	renumber(items)
	return List{items: items}, nil
}

// SetOrder 把第 index 道题放到位置 newOrd，newOrd 取值 1..Len()
func (l List) SetOrder(index, newOrd int) (List, error) {
	if newOrd < 1 || newOrd > len(l.items) {
		v := &util.ValidationError{}
		v.Add("ord", "must be between 1 and %d", len(l.items))
		return l, v
	}
	return l.Move(index, newOrd-1)
}

// AppendTemplate 把模板题目追加到列表末尾
func (l List) AppendTemplate(t Template, sectionID *uint) List {
	items := l.Items()
	for _, q := range t.Questions {
		items = append(items, q.toQuestion(sectionID))
	}
	renumber(items)
	return List{items: items}
}

func renumber(items []model.Question) {
	for i := range items {
		items[i].Ord = i + 1
	}
}

func outOfRange(field string, got, max int) error {
	v := &util.ValidationError{}
	v.Add(field, "%d is outside 0..%d", got, max)
	return v
}

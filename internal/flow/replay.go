package flow

import (
	"sort"
	"survey_backend/internal/model"
)

// Visibility 按提交的答案重放后得到的隐藏题目位置
type Visibility struct {
	hidden map[int]bool
}

func (v Visibility) Hidden(ord int) bool {
	return v.hidden[ord]
}

func (v Visibility) HiddenOrds() []int {
	ords := make([]int, 0, len(v.hidden))
	for ord, h := range v.hidden {
		if h {
			ords = append(ords, ord)
		}
	}
	sort.Ints(ords)
	return ords
}

// Replay 按 ord 从上到下重放已作答的题目，与表单上逐题作答时的效果一致。
// 被隐藏的题目的答案不参与求值。
func Replay(questions []model.Question, answers map[uint]string) Visibility {
	ordered := make([]model.Question, len(questions))
	copy(ordered, questions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Ord < ordered[j].Ord })

	v := Visibility{hidden: make(map[int]bool)}
	for _, q := range ordered {
		if v.hidden[q.Ord] {
			continue
		}
		value, ok := answers[q.ID]
		if !ok || value == "" {
			continue
		}
		res := EvaluateQuestion(ordered, q, value)
		for _, p := range res.Hide {
			v.hidden[p] = true
		}
		for _, p := range res.Show {
			v.hidden[p] = false
		}
	}
	return v
}

package model

import "time"

// Draft 答题过程中的临时进度，不作为提交依据
type Draft struct {
	Email     string        `json:"email"`
	Answers   []DraftAnswer `json:"answers"`
	Timestamp time.Time     `json:"timestamp"`
}

type DraftAnswer struct {
	QuestionID uint   `json:"questionId"`
	Value      string `json:"value"`
}

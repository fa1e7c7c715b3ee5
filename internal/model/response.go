package model

import "time"

// swagger:model Response
type Response struct {
	BaseModel
	SurveyID     uint      `gorm:"index;not null" json:"surveyId"`
	Email        string    `gorm:"size:255" json:"email"`
	InvitationID *uint     `gorm:"index" json:"invitationId"`
	SubmittedAt  time.Time `gorm:"not null" json:"submittedAt"`
	Answers      []Answer  `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

// swagger:model Answer
type Answer struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ResponseID uint   `gorm:"index;not null" json:"responseId"`
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	ValueText  string `gorm:"type:text" json:"value"`
}

func (Answer) TableName() string {
	return "answers"
}

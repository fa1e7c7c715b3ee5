package model

import "time"

// swagger:model Invitation
type Invitation struct {
	BaseModel
	SurveyID uint       `gorm:"index;not null" json:"surveyId"`
	Email    string     `gorm:"size:255;not null" json:"email"`
	Token    string     `gorm:"size:36;uniqueIndex;not null" json:"token"`
	UsedAt   *time.Time `json:"usedAt"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) Used() bool {
	return i.UsedAt != nil
}

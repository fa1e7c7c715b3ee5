package model

// swagger:model Section
type Section struct {
	BaseModel
	SurveyID uint   `gorm:"index;not null" json:"surveyId"`
	Name     string `gorm:"size:200;not null" json:"name"`
	Ord      int    `gorm:"not null" json:"ord"`
}

func (Section) TableName() string {
	return "survey_sections"
}

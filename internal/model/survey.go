package model

// swagger:model Survey
type Survey struct {
	BaseModel
	Slug     string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Title    string `gorm:"size:255;not null" json:"title"`
	IsActive bool   `gorm:"not null" json:"isActive"`
}

func (Survey) TableName() string {
	return "surveys"
}

// SurveySummary 后台列表行
type SurveySummary struct {
	Survey
	ResponseCount   int64 `json:"responseCount"`
	InvitationCount int64 `json:"invitationCount"`
}

type SurveyStats struct {
	SurveyID        uint  `json:"surveyId"`
	QuestionCount   int64 `json:"questionCount"`
	SectionCount    int64 `json:"sectionCount"`
	ResponseCount   int64 `json:"responseCount"`
	InvitationCount int64 `json:"invitationCount"`
	UsedInvitations int64 `json:"usedInvitations"`
}

// PublicSurvey 答题端看到的完整结构
type PublicSurvey struct {
	Survey    Survey     `json:"survey"`
	Sections  []Section  `json:"sections"`
	Questions []Question `json:"questions"`
}

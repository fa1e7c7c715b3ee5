package repository

import (
	"errors"
	"survey_backend/internal/model"
	"survey_backend/internal/util"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func (r *SurveyRepository) Create(survey *model.Survey) error {
	return r.DB.Create(survey).Error
}

// Update 只更新标题、slug 和启用状态
func (r *SurveyRepository) Update(survey *model.Survey) error {
	return r.DB.Model(&model.Survey{}).
		Where("id = ?", survey.ID).
		Updates(map[string]interface{}{
			"slug":      survey.Slug,
			"title":     survey.Title,
			"is_active": survey.IsActive,
		}).Error
}

func (r *SurveyRepository) FindByID(id uint) (*model.Survey, error) {
	var survey model.Survey
	if err := r.DB.First(&survey, id).Error; err != nil {
		return nil, notFound(err, util.ErrSurveyNotFound)
	}
	return &survey, nil
}

func (r *SurveyRepository) FindBySlug(slug string) (*model.Survey, error) {
	var survey model.Survey
	if err := r.DB.Where("slug = ?", slug).First(&survey).Error; err != nil {
		return nil, notFound(err, util.ErrSurveyNotFound)
	}
	return &survey, nil
}

// SlugTaken 判断 slug 是否已被其他问卷使用，exceptID 为 0 时检查全部
func (r *SurveyRepository) SlugTaken(slug string, exceptID uint) (bool, error) {
	var count int64
	q := r.DB.Model(&model.Survey{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ListWithCounts 后台问卷列表，附带回答数和邀请数
func (r *SurveyRepository) ListWithCounts() ([]model.SurveySummary, error) {
	var surveys []model.Survey
	if err := r.DB.Order("id DESC").Find(&surveys).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		SurveyID uint
		Total    int64
	}
	var responses, invitations []countRow
	if err := r.DB.Model(&model.Response{}).
		Select("survey_id, COUNT(*) AS total").
		Group("survey_id").
		Scan(&responses).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&model.Invitation{}).
		Select("survey_id, COUNT(*) AS total").
		Group("survey_id").
		Scan(&invitations).Error; err != nil {
		return nil, err
	}

	responseBySurvey := make(map[uint]int64, len(responses))
	for _, row := range responses {
		responseBySurvey[row.SurveyID] = row.Total
	}
	invitationBySurvey := make(map[uint]int64, len(invitations))
	for _, row := range invitations {
		invitationBySurvey[row.SurveyID] = row.Total
	}

	summaries := make([]model.SurveySummary, 0, len(surveys))
	for _, s := range surveys {
		summaries = append(summaries, model.SurveySummary{
			Survey:          s,
			ResponseCount:   responseBySurvey[s.ID],
			InvitationCount: invitationBySurvey[s.ID],
		})
	}
	return summaries, nil
}

func (r *SurveyRepository) Stats(surveyID uint) (*model.SurveyStats, error) {
	stats := &model.SurveyStats{SurveyID: surveyID}
	counts := []struct {
		query *gorm.DB
		dst   *int64
	}{
		{r.DB.Model(&model.Question{}).Where("survey_id = ?", surveyID), &stats.QuestionCount},
		{r.DB.Model(&model.Section{}).Where("survey_id = ?", surveyID), &stats.SectionCount},
		{r.DB.Model(&model.Response{}).Where("survey_id = ?", surveyID), &stats.ResponseCount},
		{r.DB.Model(&model.Invitation{}).Where("survey_id = ?", surveyID), &stats.InvitationCount},
		{r.DB.Model(&model.Invitation{}).Where("survey_id = ? AND used_at IS NOT NULL", surveyID), &stats.UsedInvitations},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// Delete 删除问卷及其题目、分组、邀请和回答
func (r *SurveyRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		responseIDs := tx.Model(&model.Response{}).Select("id").Where("survey_id = ?", id)
		if err := tx.Where("response_id IN (?)", responseIDs).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&model.Response{}, &model.Invitation{}, &model.Question{}, &model.Section{}} {
			if err := tx.Where("survey_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&model.Survey{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrSurveyNotFound
		}
		return nil
	})
}

package repository

import (
	"context"
	"survey_backend/internal/model"
	"survey_backend/internal/util"

	"gorm.io/gorm"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

// Create 保存回答和全部答案；带邀请时在同一事务中把邀请标记为已使用
func (r *ResponseRepository) Create(ctx context.Context, response *model.Response) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if response.InvitationID != nil {
			res := tx.Model(&model.Invitation{}).
				Where("id = ? AND used_at IS NULL", *response.InvitationID).
				Update("used_at", response.SubmittedAt)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return util.ErrInvitationUsed
			}
		}
		return tx.Create(response).Error
	})
}

// ListBySurvey 按提交时间顺序返回回答及答案
func (r *ResponseRepository) ListBySurvey(surveyID uint) ([]model.Response, error) {
	var responses []model.Response
	err := r.DB.Preload("Answers").
		Where("survey_id = ?", surveyID).
		Order("submitted_at ASC, id ASC").
		Find(&responses).Error
	return responses, err
}

package repository

import (
	"survey_backend/internal/model"
	"survey_backend/internal/util"

	"gorm.io/gorm"
)

type InvitationRepository struct {
	DB *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{DB: db}
}

// CreateBatch 一次写入全部邀请
func (r *InvitationRepository) CreateBatch(invitations []*model.Invitation) error {
	if len(invitations) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for _, inv := range invitations {
			if err := tx.Create(inv).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *InvitationRepository) FindByToken(token string) (*model.Invitation, error) {
	var inv model.Invitation
	if err := r.DB.Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, notFound(err, util.ErrInvitationNotFound)
	}
	return &inv, nil
}

func (r *InvitationRepository) ListBySurvey(surveyID uint) ([]model.Invitation, error) {
	var invitations []model.Invitation
	err := r.DB.Where("survey_id = ?", surveyID).Order("id DESC").Find(&invitations).Error
	return invitations, err
}

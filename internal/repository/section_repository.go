package repository

import (
	"survey_backend/internal/model"
	"survey_backend/internal/util"

	"gorm.io/gorm"
)

type SectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: db}
}

func (r *SectionRepository) ListBySurvey(surveyID uint) ([]model.Section, error) {
	var sections []model.Section
	err := r.DB.Where("survey_id = ?", surveyID).Order("ord ASC, id ASC").Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) IDsBySurvey(surveyID uint) ([]uint, error) {
	ids := make([]uint, 0)
	err := r.DB.Model(&model.Section{}).Where("survey_id = ?", surveyID).Pluck("id", &ids).Error
	return ids, err
}

func (r *SectionRepository) FindByID(id uint) (*model.Section, error) {
	var section model.Section
	if err := r.DB.First(&section, id).Error; err != nil {
		return nil, notFound(err, util.ErrSectionNotFound)
	}
	return &section, nil
}

// Create 新分组排在最后
func (r *SectionRepository) Create(section *model.Section) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var maxOrd int
		if err := tx.Model(&model.Section{}).
			Where("survey_id = ?", section.SurveyID).
			Select("COALESCE(MAX(ord), 0)").
			Scan(&maxOrd).Error; err != nil {
			return err
		}
		section.Ord = maxOrd + 1
		return tx.Create(section).Error
	})
}

func (r *SectionRepository) Rename(id uint, name string) error {
	res := r.DB.Model(&model.Section{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrSectionNotFound
	}
	return nil
}

// Delete 题目改为未分组后删除分组，题目本身保留；其余分组重新从 1 编号
func (r *SectionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var section model.Section
		if err := tx.First(&section, id).Error; err != nil {
			return notFound(err, util.ErrSectionNotFound)
		}

		if err := tx.Model(&model.Question{}).
			Where("section_id = ?", id).
			Update("section_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.Section{}, id).Error; err != nil {
			return err
		}

		var rest []model.Section
		if err := tx.Where("survey_id = ?", section.SurveyID).Order("ord ASC, id ASC").Find(&rest).Error; err != nil {
			return err
		}
		for i, s := range rest {
			if s.Ord == i+1 {
				continue
			}
			if err := tx.Model(&model.Section{}).Where("id = ?", s.ID).Update("ord", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

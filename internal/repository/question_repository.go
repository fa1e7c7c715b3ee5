package repository

import (
	"context"
	"errors"
	"survey_backend/internal/model"
	"survey_backend/internal/reconcile"
	"survey_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) ListBySurvey(surveyID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("survey_id = ?", surveyID).Order("ord ASC, id ASC").Find(&questions).Error
	return questions, err
}

// Reconcile 在一个事务中把问卷的题目列表替换为 desired。
// 问卷行加锁，先更新再插入最后删除；任何一步失败整个批次回滚。
func (r *QuestionRepository) Reconcile(ctx context.Context, surveyID uint, desired []model.Question) (*reconcile.Plan, error) {
	var plan *reconcile.Plan

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var survey model.Survey
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&survey, surveyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrSurveyNotFound
			}
			return &util.TransactionError{SurveyID: surveyID, Op: "lock survey", Err: err}
		}

		var persisted []model.Question
		if err := tx.Where("survey_id = ?", surveyID).Order("ord ASC, id ASC").Find(&persisted).Error; err != nil {
			return &util.TransactionError{SurveyID: surveyID, Op: "load questions", Err: err}
		}

		sectionIDs := make([]uint, 0)
		if err := tx.Model(&model.Section{}).Where("survey_id = ?", surveyID).Pluck("id", &sectionIDs).Error; err != nil {
			return &util.TransactionError{SurveyID: surveyID, Op: "load sections", Err: err}
		}

		p, err := reconcile.Build(surveyID, persisted, desired, sectionIDs)
		if err != nil {
			return err
		}

		now := time.Now()
		for _, q := range p.Updates {
			if err := tx.Model(&model.Question{}).
				Where("id = ? AND survey_id = ?", q.ID, surveyID).
				Updates(map[string]interface{}{
					"section_id":        q.SectionID,
					"ord":               q.Ord,
					"label":             q.Label,
					"type":              q.Type,
					"required":          q.Required,
					"options":           q.Options,
					"conditional_logic": q.Rules,
					"updated_at":        now,
				}).Error; err != nil {
				return &util.TransactionError{SurveyID: surveyID, Op: "update question", Err: err}
			}
			q.UpdatedAt = now
		}

		for _, q := range p.Inserts {
			if err := tx.Create(q).Error; err != nil {
				return &util.TransactionError{SurveyID: surveyID, Op: "insert question", Err: err}
			}
		}

		if len(p.Deletes) > 0 {
			if err := tx.Where("survey_id = ? AND id IN ?", surveyID, p.Deletes).Delete(&model.Question{}).Error; err != nil {
				return &util.TransactionError{SurveyID: surveyID, Op: "delete questions", Err: err}
			}
		}

		plan = p
		return nil
	})
	if err != nil {
		var txErr *util.TransactionError
		var validationErr *util.ValidationError
		if errors.As(err, &txErr) || errors.As(err, &validationErr) || errors.Is(err, util.ErrSurveyNotFound) {
			return nil, err
		}
		// commit 失败
		return nil, &util.TransactionError{SurveyID: surveyID, Op: "commit", Err: err}
	}
	return plan, nil
}

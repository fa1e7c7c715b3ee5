package service

import (
	"context"
	"errors"
	"survey_backend/internal/cache"
	"survey_backend/internal/editing"
	"survey_backend/internal/model"
	"survey_backend/internal/reconcile"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"
	"survey_backend/pkg/monitoring"
	"survey_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	SurveyRepo   *repository.SurveyRepository
	Locker       cache.Locker
}

func NewQuestionService(questionRepo *repository.QuestionRepository, surveyRepo *repository.SurveyRepository, locker cache.Locker) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		SurveyRepo:   surveyRepo,
		Locker:       locker,
	}
}

// SaveResult 保存后的完整题目列表和变更统计
type SaveResult struct {
	Questions []model.Question       `json:"questions"`
	Inserted  int                    `json:"inserted"`
	Updated   int                    `json:"updated"`
	Deleted   int                    `json:"deleted"`
	Unchanged int                    `json:"unchanged"`
	Warnings  []*util.ReferenceError `json:"warnings"`
}

func newSaveResult(plan *reconcile.Plan) *SaveResult {
	warnings := plan.Warnings
	if warnings == nil {
		warnings = []*util.ReferenceError{}
	}
	return &SaveResult{
		Questions: plan.Desired,
		Inserted:  len(plan.Inserts),
		Updated:   len(plan.Updates),
		Deleted:   len(plan.Deletes),
		Unchanged: len(plan.Unchanged),
		Warnings:  warnings,
	}
}

func (s *QuestionService) List(surveyID uint) ([]model.Question, error) {
	if _, err := s.SurveyRepo.FindByID(surveyID); err != nil {
		return nil, err
	}
	return s.QuestionRepo.ListBySurvey(surveyID)
}

// Save 用 desired 替换问卷的全部题目
func (s *QuestionService) Save(ctx context.Context, surveyID uint, desired []model.Question) (*SaveResult, error) {
	return s.withLock(ctx, surveyID, "save", func(ctx context.Context) ([]model.Question, error) {
		return desired, nil
	})
}

// Move 拖拽排序，下标从 0 开始
func (s *QuestionService) Move(ctx context.Context, surveyID uint, from, to int) (*SaveResult, error) {
	return s.edit(ctx, surveyID, "move", func(l editing.List) (editing.List, error) {
		return l.Move(from, to)
	})
}

// SetOrder 把题目放到位置 ord（1..题目数）
func (s *QuestionService) SetOrder(ctx context.Context, surveyID, questionID uint, ord int) (*SaveResult, error) {
	return s.edit(ctx, surveyID, "set_order", func(l editing.List) (editing.List, error) {
		for i, q := range l.Items() {
			if q.ID == questionID {
				return l.SetOrder(i, ord)
			}
		}
		return l, util.ErrQuestionNotFound
	})
}

func (s *QuestionService) Remove(ctx context.Context, surveyID, questionID uint) (*SaveResult, error) {
	return s.edit(ctx, surveyID, "remove", func(l editing.List) (editing.List, error) {
		return l.RemoveID(questionID)
	})
}

func (s *QuestionService) AppendTemplate(ctx context.Context, surveyID uint, name string, sectionID *uint) (*SaveResult, error) {
	tpl, err := editing.LookupTemplate(name)
	if err != nil {
		return nil, err
	}
	return s.edit(ctx, surveyID, "template", func(l editing.List) (editing.List, error) {
		return l.AppendTemplate(tpl, sectionID), nil
	})
}

func (s *QuestionService) edit(ctx context.Context, surveyID uint, op string, transform func(editing.List) (editing.List, error)) (*SaveResult, error) {
	return s.withLock(ctx, surveyID, op, func(ctx context.Context) ([]model.Question, error) {
		current, err := s.QuestionRepo.ListBySurvey(surveyID)
		if err != nil {
			return nil, err
		}
		next, err := transform(editing.NewList(current))
		if err != nil {
			return nil, err
		}
		return next.Items(), nil
	})
}

func (s *QuestionService) withLock(ctx context.Context, surveyID uint, op string, desired func(context.Context) ([]model.Question, error)) (*SaveResult, error) {
	ctx, span := tracing.Start(ctx, "QuestionService."+op)
	defer span.End()
	span.SetAttributes(attribute.Int64("survey.id", int64(surveyID)))

	release, ok, err := s.Locker.TryLock(ctx, surveyID)
	if err != nil {
		monitoring.ReconcileTotal.WithLabelValues("failed").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !ok {
		monitoring.ReconcileTotal.WithLabelValues("conflict").Inc()
		span.SetStatus(codes.Error, "locked")
		return nil, &util.ConflictError{SurveyID: surveyID}
	}
	defer release()

	questions, err := desired(ctx)
	if err != nil {
		s.recordFailure(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("questions", len(questions)))

	plan, err := s.QuestionRepo.Reconcile(ctx, surveyID, questions)
	if err != nil {
		s.recordFailure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	monitoring.ReconcileTotal.WithLabelValues("ok").Inc()
	monitoring.ReconcileChanges.WithLabelValues("insert").Add(float64(len(plan.Inserts)))
	monitoring.ReconcileChanges.WithLabelValues("update").Add(float64(len(plan.Updates)))
	monitoring.ReconcileChanges.WithLabelValues("delete").Add(float64(len(plan.Deletes)))

	logger.Log.Info("Question set saved",
		zap.Uint("surveyId", surveyID),
		zap.String("op", op),
		zap.Int("inserted", len(plan.Inserts)),
		zap.Int("updated", len(plan.Updates)),
		zap.Int("deleted", len(plan.Deletes)),
		zap.Int("unchanged", len(plan.Unchanged)),
	)
	for _, w := range plan.Warnings {
		logger.Log.Warn("Dangling conditional rule", zap.Uint("surveyId", surveyID), zap.Error(w))
	}

	return newSaveResult(plan), nil
}

func (s *QuestionService) recordFailure(err error) {
	var validationErr *util.ValidationError
	switch {
	case errors.As(err, &validationErr):
		monitoring.ReconcileTotal.WithLabelValues("invalid").Inc()
	case errors.Is(err, util.ErrSurveyNotFound), errors.Is(err, util.ErrQuestionNotFound):
		monitoring.ReconcileTotal.WithLabelValues("not_found").Inc()
	default:
		monitoring.ReconcileTotal.WithLabelValues("failed").Inc()
	}
}

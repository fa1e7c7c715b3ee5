package service

import (
	"survey_backend/internal/flow"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"

	"go.uber.org/zap"
)

type FlowService struct {
	SurveyService *SurveyService
}

func NewFlowService(surveyService *SurveyService) *FlowService {
	return &FlowService{SurveyService: surveyService}
}

// Evaluate 对一次回答事件求值，只依赖当前题目和回答
func (s *FlowService) Evaluate(slug string, questionID uint, value string) (*flow.Result, error) {
	public, err := s.SurveyService.Public(slug)
	if err != nil {
		return nil, err
	}

	current := findQuestion(public.Questions, questionID)
	if current == nil {
		return nil, util.ErrQuestionNotFound
	}

	res := flow.EvaluateQuestion(public.Questions, *current, value)
	if res.Warning != nil {
		logger.Log.Warn("Conditional rule points to a missing question",
			zap.String("slug", slug),
			zap.Uint("questionId", questionID),
			zap.Error(res.Warning),
		)
	}
	return &res, nil
}

func findQuestion(questions []model.Question, id uint) *model.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

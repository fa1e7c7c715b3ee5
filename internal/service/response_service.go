package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"survey_backend/internal/flow"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"
	"survey_backend/pkg/monitoring"
	"survey_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type ResponseService struct {
	ResponseRepo   *repository.ResponseRepository
	InvitationRepo *repository.InvitationRepository
	QuestionRepo   *repository.QuestionRepository
	SurveyService  *SurveyService
	DraftService   *DraftService
}

func NewResponseService(
	responseRepo *repository.ResponseRepository,
	invitationRepo *repository.InvitationRepository,
	questionRepo *repository.QuestionRepository,
	surveyService *SurveyService,
	draftService *DraftService,
) *ResponseService {
	return &ResponseService{
		ResponseRepo:   responseRepo,
		InvitationRepo: invitationRepo,
		QuestionRepo:   questionRepo,
		SurveyService:  surveyService,
		DraftService:   draftService,
	}
}

type SubmitAnswer struct {
	QuestionID uint   `json:"questionId"`
	Value      string `json:"value"`
}

type SubmitRequest struct {
	SurveySlug string         `json:"surveySlug"`
	Email      string         `json:"email"`
	Token      string         `json:"token"`
	Answers    []SubmitAnswer `json:"answers"`
	DeviceID   string         `json:"deviceId"`
}

type SubmitResult struct {
	ResponseID  uint      `json:"responseId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Submit 按当前题目重新校验后保存回答。
// 条件跳转隐藏的题目不要求作答，其答案也不保存。
func (s *ResponseService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	ctx, span := tracing.Start(ctx, "ResponseService.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("survey.slug", req.SurveySlug))

	res, err := s.submit(ctx, req)
	if err != nil {
		var validationErr *util.ValidationError
		switch {
		case errors.As(err, &validationErr), errors.Is(err, util.ErrEmptySubmission):
			monitoring.SubmissionsTotal.WithLabelValues("invalid").Inc()
		case errors.Is(err, util.ErrInvitationUsed), errors.Is(err, util.ErrInvitationNotFound), errors.Is(err, util.ErrInvitationMismatch):
			monitoring.SubmissionsTotal.WithLabelValues("rejected_token").Inc()
		default:
			monitoring.SubmissionsTotal.WithLabelValues("failed").Inc()
		}
		span.RecordError(err)
		return nil, err
	}
	monitoring.SubmissionsTotal.WithLabelValues("ok").Inc()
	return res, nil
}

func (s *ResponseService) submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if len(req.Answers) == 0 {
		return nil, util.ErrEmptySubmission
	}
	email := strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		v := &util.ValidationError{}
		v.Add("email", "invalid email address")
		return nil, v
	}

	survey, err := s.SurveyService.ActiveBySlug(strings.TrimSpace(req.SurveySlug))
	if err != nil {
		return nil, err
	}

	var invitation *model.Invitation
	if token := strings.TrimSpace(req.Token); token != "" {
		invitation, err = s.InvitationRepo.FindByToken(token)
		if err != nil {
			return nil, err
		}
		if invitation.SurveyID != survey.ID {
			return nil, util.ErrInvitationMismatch
		}
		if invitation.Used() {
			return nil, util.ErrInvitationUsed
		}
	}

	questions, err := s.QuestionRepo.ListBySurvey(survey.ID)
	if err != nil {
		return nil, err
	}
	answers, err := validateAnswers(questions, req.Answers)
	if err != nil {
		return nil, err
	}

	response := &model.Response{
		SurveyID:    survey.ID,
		Email:       email,
		SubmittedAt: time.Now(),
	}
	if invitation != nil {
		response.InvitationID = &invitation.ID
	}
	for _, q := range questions {
		if value, ok := answers[q.ID]; ok {
			response.Answers = append(response.Answers, model.Answer{QuestionID: q.ID, ValueText: value})
		}
	}

	if err := s.ResponseRepo.Create(ctx, response); err != nil {
		return nil, err
	}

	if err := s.DraftService.clearByID(ctx, survey.ID, strings.TrimSpace(req.DeviceID)); err != nil {
		logger.Log.Warn("Clear draft after submission failed", zap.Uint("surveyId", survey.ID), zap.Error(err))
	}

	logger.Log.Info("Response submitted",
		zap.Uint("surveyId", survey.ID),
		zap.Uint("responseId", response.ID),
		zap.Int("answers", len(response.Answers)),
		zap.Bool("invited", invitation != nil),
	)
	return &SubmitResult{ResponseID: response.ID, SubmittedAt: response.SubmittedAt}, nil
}

// validateAnswers 返回可见题目的答案；隐藏题目的答案被丢弃
func validateAnswers(questions []model.Question, submitted []SubmitAnswer) (map[uint]string, error) {
	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	v := &util.ValidationError{}
	answers := make(map[uint]string, len(submitted))
	for i, a := range submitted {
		field := fmt.Sprintf("answers[%d]", i)
		q, ok := byID[a.QuestionID]
		if !ok {
			v.Add(field+".questionId", "question %d does not belong to this survey", a.QuestionID)
			continue
		}
		if _, dup := answers[a.QuestionID]; dup {
			v.Add(field+".questionId", "question %d answered more than once", a.QuestionID)
			continue
		}
		if msg := checkValue(q, a.Value); msg != "" {
			v.Add(field+".value", "%s", msg)
		}
		answers[a.QuestionID] = a.Value
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	visibility := flow.Replay(questions, answers)
	for _, q := range questions {
		if visibility.Hidden(q.Ord) {
			delete(answers, q.ID)
			continue
		}
		if q.Required && strings.TrimSpace(answers[q.ID]) == "" {
			v.Add(fmt.Sprintf("question[%d]", q.Ord), "answer is required")
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}

func checkValue(q *model.Question, value string) string {
	if value == "" {
		return ""
	}
	switch q.Type {
	case model.QuestionNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return "must be a number"
		}
	case model.QuestionSingle, model.QuestionLikert:
		if !contains(q.Options, value) {
			return fmt.Sprintf("%q is not one of the options", value)
		}
	case model.QuestionMultiple:
		for _, choice := range flow.DecodeAnswer(value) {
			if !contains(q.Options, choice) {
				return fmt.Sprintf("%q is not one of the options", choice)
			}
		}
	}
	return ""
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

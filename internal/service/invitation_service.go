package service

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"
	mailer "survey_backend/pkg/mail"
	"survey_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TokenPlaceholder 自定义邮件正文中的令牌占位符
const TokenPlaceholder = "{{TOKEN}}"

type InvitationService struct {
	InvitationRepo *repository.InvitationRepository
	SurveyRepo     *repository.SurveyRepository
	Sender         mailer.Sender
	Cfg            *config.InvitationConfig
}

func NewInvitationService(invitationRepo *repository.InvitationRepository, surveyRepo *repository.SurveyRepository, sender mailer.Sender, cfg *config.InvitationConfig) *InvitationService {
	return &InvitationService{
		InvitationRepo: invitationRepo,
		SurveyRepo:     surveyRepo,
		Sender:         sender,
		Cfg:            cfg,
	}
}

type BatchInput struct {
	Emails  []string `json:"emails"`
	Message string   `json:"message"`
}

type Delivery struct {
	Email     string `json:"email"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BatchResult struct {
	Sent        int        `json:"sent"`
	Failed      int        `json:"failed"`
	Invitations []Delivery `json:"invitations"`
}

type InvitationLink struct {
	Token string `json:"token"`
	Link  string `json:"link"`
}

// InvitationInfo 答题端通过令牌看到的信息
type InvitationInfo struct {
	Email       string `json:"email"`
	SurveySlug  string `json:"surveySlug"`
	SurveyTitle string `json:"surveyTitle"`
}

func (s *InvitationService) surveyURL(slug string) string {
	base := strings.TrimRight(s.Cfg.BaseURL, "/")
	return base + "/?survey=" + url.QueryEscape(slug)
}

func (s *InvitationService) invitationURL(slug, token string) string {
	return s.surveyURL(slug) + "&token=" + token
}

func defaultMessage(title, surveyURL string) string {
	return fmt.Sprintf("Hello,\n\nYou are invited to take part in the survey \"%s\".\n\nSurvey link: %s&token=%s\n\nThank you.",
		title, surveyURL, TokenPlaceholder)
}

// normalizeEmails 去空白、按小写去重，非法地址全部列出
func normalizeEmails(emails []string) ([]string, error) {
	v := &util.ValidationError{}
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for i, raw := range emails {
		email := strings.TrimSpace(raw)
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			v.Add(fmt.Sprintf("emails[%d]", i), "invalid email address")
			continue
		}
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, email)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InvitationService) concurrency() int {
	if s.Cfg.Concurrency <= 0 {
		return 1
	}
	return s.Cfg.Concurrency
}

// SendBatch 为每个地址生成邀请并发送邮件。
// 邀请在发送前全部写入；单个地址发送失败不影响其他地址。
func (s *InvitationService) SendBatch(ctx context.Context, surveyID uint, in BatchInput) (*BatchResult, error) {
	survey, err := s.SurveyRepo.FindByID(surveyID)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive {
		return nil, util.ErrSurveyInactive
	}

	emails, err := normalizeEmails(in.Emails)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, util.ErrNoRecipients
	}

	invitations := make([]*model.Invitation, len(emails))
	for i, email := range emails {
		invitations[i] = &model.Invitation{
			SurveyID: survey.ID,
			Email:    email,
			Token:    model.GenerateUUID(),
		}
	}
	if err := s.InvitationRepo.CreateBatch(invitations); err != nil {
		return nil, err
	}

	body := in.Message
	if strings.TrimSpace(body) == "" {
		body = defaultMessage(survey.Title, s.surveyURL(survey.Slug))
	}

	deliveries := make([]Delivery, len(invitations))
	failures := make([]error, len(invitations))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency())
	for i, inv := range invitations {
		i, inv := i, inv
		g.Go(func() error {
			link := s.invitationURL(survey.Slug, inv.Token)
			deliveries[i] = Delivery{Email: inv.Email, URL: link}

			msg, err := mailer.InvitationMessage(inv.Email, survey.Title, link, strings.ReplaceAll(body, TokenPlaceholder, inv.Token))
			if err == nil {
				deliveries[i].MessageID, err = s.Sender.Send(ctx, msg)
			}
			if err != nil {
				failures[i] = &util.DeliveryError{Email: inv.Email, Err: err}
				deliveries[i].Status = "failed"
				deliveries[i].Error = err.Error()
				monitoring.InvitationsTotal.WithLabelValues("failed").Inc()
				return nil
			}
			deliveries[i].Status = "sent"
			monitoring.InvitationsTotal.WithLabelValues("sent").Inc()
			return nil
		})
	}
	_ = g.Wait()

	result := &BatchResult{Invitations: deliveries}
	for _, d := range deliveries {
		if d.Status == "sent" {
			result.Sent++
		} else {
			result.Failed++
		}
	}

	if err := multierr.Combine(failures...); err != nil {
		logger.Log.Error("Invitation delivery failed",
			zap.Uint("surveyId", survey.ID),
			zap.Int("failed", result.Failed),
			zap.Error(err),
		)
	}
	logger.Log.Info("Invitations sent",
		zap.Uint("surveyId", survey.ID),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// CreateSingle 只生成令牌，不发送邮件
func (s *InvitationService) CreateSingle(surveySlug, email string) (*InvitationLink, error) {
	survey, err := s.SurveyRepo.FindBySlug(strings.TrimSpace(surveySlug))
	if err != nil {
		return nil, err
	}
	emails, err := normalizeEmails([]string{email})
	if err != nil {
		return nil, err
	}

	inv := &model.Invitation{SurveyID: survey.ID, Email: emails[0], Token: model.GenerateUUID()}
	if err := s.InvitationRepo.CreateBatch([]*model.Invitation{inv}); err != nil {
		return nil, err
	}
	return &InvitationLink{Token: inv.Token, Link: s.invitationURL(survey.Slug, inv.Token)}, nil
}

// Lookup 令牌不存在返回 ErrInvitationNotFound，已使用返回 ErrInvitationUsed
func (s *InvitationService) Lookup(token string) (*InvitationInfo, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, util.ErrInvitationNotFound
	}
	inv, err := s.InvitationRepo.FindByToken(token)
	if err != nil {
		return nil, err
	}
	if inv.Used() {
		return nil, util.ErrInvitationUsed
	}
	survey, err := s.SurveyRepo.FindByID(inv.SurveyID)
	if err != nil {
		return nil, err
	}
	return &InvitationInfo{Email: inv.Email, SurveySlug: survey.Slug, SurveyTitle: survey.Title}, nil
}

func (s *InvitationService) List(surveyID uint) ([]model.Invitation, error) {
	if _, err := s.SurveyRepo.FindByID(surveyID); err != nil {
		return nil, err
	}
	return s.InvitationRepo.ListBySurvey(surveyID)
}

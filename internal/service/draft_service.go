package service

import (
	"context"
	"strings"
	"survey_backend/internal/cache"
	"survey_backend/internal/model"
	"survey_backend/internal/util"
	"time"
)

const maxDeviceIDLength = 64

// DraftService 答题草稿。草稿不作为提交依据，提交时会重新校验。
type DraftService struct {
	Cache      *cache.DraftCache
	SurveyRepo surveyFinder
}

type surveyFinder interface {
	FindBySlug(slug string) (*model.Survey, error)
}

func NewDraftService(draftCache *cache.DraftCache, surveyRepo surveyFinder) *DraftService {
	return &DraftService{Cache: draftCache, SurveyRepo: surveyRepo}
}

func (s *DraftService) target(slug, deviceID string) (uint, error) {
	if s.Cache == nil {
		return 0, util.ErrDraftStoreDisabled
	}
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" || len(deviceID) > maxDeviceIDLength {
		v := &util.ValidationError{}
		v.Add("deviceId", "must be 1 to %d characters", maxDeviceIDLength)
		return 0, v
	}
	survey, err := s.SurveyRepo.FindBySlug(slug)
	if err != nil {
		return 0, err
	}
	return survey.ID, nil
}

// Save 覆盖该设备上的草稿
func (s *DraftService) Save(ctx context.Context, slug, deviceID, email string, answers []model.DraftAnswer) (*model.Draft, error) {
	surveyID, err := s.target(slug, deviceID)
	if err != nil {
		return nil, err
	}

	if answers == nil {
		answers = []model.DraftAnswer{}
	}
	draft := &model.Draft{
		Email:     strings.TrimSpace(email),
		Answers:   answers,
		Timestamp: time.Now(),
	}
	if err := s.Cache.Save(ctx, surveyID, deviceID, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Load 没有草稿时返回 nil, nil
func (s *DraftService) Load(ctx context.Context, slug, deviceID string) (*model.Draft, error) {
	surveyID, err := s.target(slug, deviceID)
	if err != nil {
		return nil, err
	}
	return s.Cache.Load(ctx, surveyID, deviceID)
}

func (s *DraftService) Clear(ctx context.Context, slug, deviceID string) error {
	surveyID, err := s.target(slug, deviceID)
	if err != nil {
		return err
	}
	return s.Cache.Clear(ctx, surveyID, deviceID)
}

// clearByID 提交成功后使用，问卷已经确定
func (s *DraftService) clearByID(ctx context.Context, surveyID uint, deviceID string) error {
	if s == nil || s.Cache == nil || deviceID == "" {
		return nil
	}
	return s.Cache.Clear(ctx, surveyID, deviceID)
}

package service

import (
	"regexp"
	"strings"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type SurveyService struct {
	SurveyRepo   *repository.SurveyRepository
	SectionRepo  *repository.SectionRepository
	QuestionRepo *repository.QuestionRepository
}

func NewSurveyService(surveyRepo *repository.SurveyRepository, sectionRepo *repository.SectionRepository, questionRepo *repository.QuestionRepository) *SurveyService {
	return &SurveyService{
		SurveyRepo:   surveyRepo,
		SectionRepo:  sectionRepo,
		QuestionRepo: questionRepo,
	}
}

type SurveyInput struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	IsActive *bool  `json:"isActive"`
}

func (in SurveyInput) validate() error {
	v := &util.ValidationError{}
	if !slugPattern.MatchString(in.Slug) || len(in.Slug) > 120 {
		v.Add("slug", "must be lowercase letters, digits and single hyphens, at most 120 characters")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		v.Add("title", "must not be empty")
	} else if len(title) > 255 {
		v.Add("title", "must be at most 255 characters")
	}
	return v.Err()
}

func (s *SurveyService) Create(in SurveyInput) (*model.Survey, error) {
	in.Slug = strings.TrimSpace(in.Slug)
	if err := in.validate(); err != nil {
		return nil, err
	}

	taken, err := s.SurveyRepo.SlugTaken(in.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrSlugTaken
	}

	survey := &model.Survey{
		Slug:     in.Slug,
		Title:    strings.TrimSpace(in.Title),
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := s.SurveyRepo.Create(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) Update(id uint, in SurveyInput) (*model.Survey, error) {
	survey, err := s.SurveyRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	in.Slug = strings.TrimSpace(in.Slug)
	if err := in.validate(); err != nil {
		return nil, err
	}

	taken, err := s.SurveyRepo.SlugTaken(in.Slug, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrSlugTaken
	}

	survey.Slug = in.Slug
	survey.Title = strings.TrimSpace(in.Title)
	if in.IsActive != nil {
		survey.IsActive = *in.IsActive
	}
	if err := s.SurveyRepo.Update(survey); err != nil {
		return nil, err
	}
	return survey, nil
}

func (s *SurveyService) Delete(id uint) error {
	return s.SurveyRepo.Delete(id)
}

func (s *SurveyService) Get(id uint) (*model.Survey, error) {
	return s.SurveyRepo.FindByID(id)
}

func (s *SurveyService) List() ([]model.SurveySummary, error) {
	return s.SurveyRepo.ListWithCounts()
}

func (s *SurveyService) Stats(id uint) (*model.SurveyStats, error) {
	if _, err := s.SurveyRepo.FindByID(id); err != nil {
		return nil, err
	}
	return s.SurveyRepo.Stats(id)
}

// ActiveBySlug 答题端入口：不存在返回 ErrSurveyNotFound，未启用返回 ErrSurveyInactive
func (s *SurveyService) ActiveBySlug(slug string) (*model.Survey, error) {
	survey, err := s.SurveyRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !survey.IsActive {
		return nil, util.ErrSurveyInactive
	}
	return survey, nil
}

// Public 返回答题端需要的问卷、分组和按 ord 排序的题目
func (s *SurveyService) Public(slug string) (*model.PublicSurvey, error) {
	survey, err := s.ActiveBySlug(slug)
	if err != nil {
		return nil, err
	}

	sections, err := s.SectionRepo.ListBySurvey(survey.ID)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.ListBySurvey(survey.ID)
	if err != nil {
		return nil, err
	}

	return &model.PublicSurvey{
		Survey:    *survey,
		Sections:  sections,
		Questions: questions,
	}, nil
}

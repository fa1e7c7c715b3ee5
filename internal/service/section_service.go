package service

import (
	"strings"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
)

type SectionService struct {
	SectionRepo *repository.SectionRepository
	SurveyRepo  *repository.SurveyRepository
}

func NewSectionService(sectionRepo *repository.SectionRepository, surveyRepo *repository.SurveyRepository) *SectionService {
	return &SectionService{SectionRepo: sectionRepo, SurveyRepo: surveyRepo}
}

func validSectionName(name string) error {
	v := &util.ValidationError{}
	name = strings.TrimSpace(name)
	if name == "" {
		v.Add("name", "must not be empty")
	} else if len(name) > 200 {
		v.Add("name", "must be at most 200 characters")
	}
	return v.Err()
}

func (s *SectionService) List(surveyID uint) ([]model.Section, error) {
	if _, err := s.SurveyRepo.FindByID(surveyID); err != nil {
		return nil, err
	}
	return s.SectionRepo.ListBySurvey(surveyID)
}

func (s *SectionService) Create(surveyID uint, name string) (*model.Section, error) {
	if err := validSectionName(name); err != nil {
		return nil, err
	}
	if _, err := s.SurveyRepo.FindByID(surveyID); err != nil {
		return nil, err
	}

	section := &model.Section{SurveyID: surveyID, Name: strings.TrimSpace(name)}
	if err := s.SectionRepo.Create(section); err != nil {
		return nil, err
	}
	return section, nil
}

func (s *SectionService) Rename(id uint, name string) error {
	if err := validSectionName(name); err != nil {
		return err
	}
	return s.SectionRepo.Rename(id, strings.TrimSpace(name))
}

// Delete 分组下的题目变为未分组
func (s *SectionService) Delete(id uint) error {
	return s.SectionRepo.Delete(id)
}

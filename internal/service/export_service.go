package service

import (
	"bytes"
	"context"
	"fmt"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/util"
	"survey_backend/pkg/logger"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Responses"

type ExportService struct {
	SurveyRepo     *repository.SurveyRepository
	QuestionRepo   *repository.QuestionRepository
	ResponseRepo   *repository.ResponseRepository
	StorageService *StorageService
	Archive        bool
}

func NewExportService(
	surveyRepo *repository.SurveyRepository,
	questionRepo *repository.QuestionRepository,
	responseRepo *repository.ResponseRepository,
	storageService *StorageService,
	archive bool,
) *ExportService {
	return &ExportService{
		SurveyRepo:     surveyRepo,
		QuestionRepo:   questionRepo,
		ResponseRepo:   responseRepo,
		StorageService: storageService,
		Archive:        archive,
	}
}

type Export struct {
	Filename string
	Data     []byte
	// ArchiveURL 归档成功时的存储地址
	ArchiveURL string
}

// Export 每条回答一行，列为邮箱、提交时间和按 ord 排列的题目
func (s *ExportService) Export(ctx context.Context, surveyID uint) (*Export, error) {
	survey, err := s.SurveyRepo.FindByID(surveyID)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.ListBySurvey(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.ResponseRepo.ListBySurvey(surveyID)
	if err != nil {
		return nil, err
	}

	data, err := buildWorkbook(questions, responses)
	if err != nil {
		return nil, err
	}

	out := &Export{
		Filename: fmt.Sprintf("%s-export-%s.xlsx", survey.Slug, time.Now().Format(util.CompactFormat)),
		Data:     data,
	}

	if s.Archive && s.StorageService != nil {
		url, err := s.StorageService.Upload(ctx, out.Filename, bytes.NewReader(data), int64(len(data)), util.MimeXLSX)
		if err != nil {
			logger.Log.Warn("Archive export failed", zap.Uint("surveyId", surveyID), zap.Error(err))
		} else {
			out.ArchiveURL = url
		}
	}

	logger.Log.Info("Survey exported",
		zap.Uint("surveyId", surveyID),
		zap.Int("responses", len(responses)),
		zap.String("file", out.Filename),
	)
	return out, nil
}

func buildWorkbook(questions []model.Question, responses []model.Response) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	header := []interface{}{"Email", "Submitted At"}
	for _, q := range questions {
		header = append(header, fmt.Sprintf("%d. %s", q.Ord, q.Label))
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol, bold); err != nil {
		return nil, err
	}

	for i, r := range responses {
		values := make(map[uint]string, len(r.Answers))
		for _, a := range r.Answers {
			values[a.QuestionID] = a.ValueText
		}

		row := []interface{}{r.Email, r.SubmittedAt.Format(util.TimeFormat)}
		for _, q := range questions {
			row = append(row, values[q.ID])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

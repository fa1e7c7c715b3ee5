// 写入一张演示问卷，包含分组、条件跳转和模板题目
//
// 用于本地开发或演示环境初始化。问卷 slug 已存在时不做任何修改。
//
// 用法: go run scripts/seed_demo.go

package main

import (
	"context"
	"errors"
	"log"
	"survey_backend/internal/cache"
	"survey_backend/internal/config"
	"survey_backend/internal/model"
	"survey_backend/internal/repository"
	"survey_backend/internal/service"
	"survey_backend/internal/util"
	"survey_backend/pkg/database"
	"survey_backend/pkg/logger"
)

const demoSlug = "demo"

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	surveyRepo := repository.NewSurveyRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	questionRepo := repository.NewQuestionRepository(db)

	surveys := service.NewSurveyService(surveyRepo, sectionRepo, questionRepo)
	sections := service.NewSectionService(sectionRepo, surveyRepo)
	questions := service.NewQuestionService(questionRepo, surveyRepo, cache.NewMemoryLocker())

	if _, err := surveyRepo.FindBySlug(demoSlug); err == nil {
		log.Printf("问卷 %s 已存在，跳过", demoSlug)
		return
	} else if !errors.Is(err, util.ErrSurveyNotFound) {
		log.Fatalf("查询问卷失败: %v", err)
	}

	survey, err := surveys.Create(service.SurveyInput{Slug: demoSlug, Title: "Commute survey"})
	if err != nil {
		log.Fatalf("创建问卷失败: %v", err)
	}
	travel, err := sections.Create(survey.ID, "Travel")
	if err != nil {
		log.Fatalf("创建分组失败: %v", err)
	}

	ctx := context.Background()
	_, err = questions.Save(ctx, survey.ID, []model.Question{
		{SectionID: &travel.ID, Label: "Do you drive to work?", Type: model.QuestionSingle, Required: true,
			Options: []string{"Yes", "No"},
			Rules:   []model.Rule{{Answer: "No", NextQuestionOrd: 4}}},
		{SectionID: &travel.ID, Label: "How long is your drive in minutes?", Type: model.QuestionNumber, Required: true},
		{SectionID: &travel.ID, Label: "Where do you park?", Type: model.QuestionText},
		{SectionID: &travel.ID, Label: "Which other modes do you use?", Type: model.QuestionMultiple,
			Options: []string{"Bus", "Train", "Bicycle", "Walking"}},
	})
	if err != nil {
		log.Fatalf("保存题目失败: %v", err)
	}

	if _, err := questions.AppendTemplate(ctx, survey.ID, "nps", nil); err != nil {
		log.Fatalf("插入模板失败: %v", err)
	}

	log.Printf("完成！问卷 id=%d slug=%s", survey.ID, survey.Slug)
}

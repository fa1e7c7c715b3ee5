package controller

import (
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SurveyController struct {
	SurveyService *service.SurveyService
}

func NewSurveyController(surveyService *service.SurveyService) *SurveyController {
	return &SurveyController{SurveyService: surveyService}
}

// ListSurveys godoc
// @Summary 问卷列表
// @Description 返回全部问卷及回答数、邀请数
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.SurveySummary} "成功"
// @Router /api/admin/surveys [get]
func (c *SurveyController) ListSurveys(ctx *gin.Context) {
	surveys, err := c.SurveyService.List()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, surveys)
}

// GetSurvey godoc
// @Summary 问卷详情
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=model.Survey} "成功"
// @Failure 404 {object} util.Response "问卷不存在"
// @Router /api/admin/surveys/{id} [get]
func (c *SurveyController) GetSurvey(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	survey, err := c.SurveyService.Get(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, survey)
}

// CreateSurvey godoc
// @Summary 创建问卷
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SurveyInput true "问卷信息"
// @Success 201 {object} util.Response{data=model.Survey} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "slug 已被使用"
// @Router /api/admin/surveys [post]
func (c *SurveyController) CreateSurvey(ctx *gin.Context) {
	var req service.SurveyInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.Create(req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, survey)
}

// UpdateSurvey godoc
// @Summary 更新问卷
// @Tags 问卷管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body service.SurveyInput true "问卷信息"
// @Success 200 {object} util.Response{data=model.Survey} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "问卷不存在"
// @Failure 409 {object} util.Response "slug 已被使用"
// @Router /api/admin/surveys/{id} [put]
func (c *SurveyController) UpdateSurvey(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req service.SurveyInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	survey, err := c.SurveyService.Update(id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, survey)
}

// DeleteSurvey godoc
// @Summary 删除问卷
// @Description 同时删除题目、分组、邀请和全部回答
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "问卷不存在"
// @Router /api/admin/surveys/{id} [delete]
func (c *SurveyController) DeleteSurvey(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.SurveyService.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"ok": true})
}

// GetStats godoc
// @Summary 问卷统计
// @Tags 问卷管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=model.SurveyStats} "成功"
// @Failure 404 {object} util.Response "问卷不存在"
// @Router /api/admin/surveys/{id}/stats [get]
func (c *SurveyController) GetStats(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	stats, err := c.SurveyService.Stats(id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// GetPublicSurvey godoc
// @Summary 答题端获取问卷结构
// @Description 返回问卷、分组和按顺序排列的题目
// @Tags 答题
// @Produce  json
// @Param   slug path string true "问卷 slug"
// @Success 200 {object} util.Response{data=model.PublicSurvey} "成功"
// @Failure 403 {object} util.Response "问卷未启用"
// @Failure 404 {object} util.Response "问卷不存在"
// @Router /api/surveys/{slug} [get]
func (c *SurveyController) GetPublicSurvey(ctx *gin.Context) {
	public, err := c.SurveyService.Public(ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, public)
}

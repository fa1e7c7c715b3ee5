package controller

import (
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SectionController struct {
	SectionService *service.SectionService
}

func NewSectionController(sectionService *service.SectionService) *SectionController {
	return &SectionController{SectionService: sectionService}
}

type SectionRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListSections godoc
// @Summary 分组列表
// @Tags 分组管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]model.Section} "成功"
// @Router /api/admin/surveys/{id}/sections [get]
func (c *SectionController) ListSections(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	sections, err := c.SectionService.List(surveyID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sections)
}

// CreateSection godoc
// @Summary 创建分组
// @Tags 分组管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body SectionRequest true "分组名称"
// @Success 201 {object} util.Response{data=model.Section} "创建成功"
// @Router /api/admin/surveys/{id}/sections [post]
func (c *SectionController) CreateSection(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.SectionService.Create(surveyID, req.Name)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// RenameSection godoc
// @Summary 重命名分组
// @Tags 分组管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "分组ID"
// @Param   body body SectionRequest true "分组名称"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/sections/{id} [put]
func (c *SectionController) RenameSection(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SectionService.Rename(id, req.Name); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"ok": true})
}

// DeleteSection godoc
// @Summary 删除分组
// @Description 分组下的题目变为未分组
// @Tags 分组管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "分组ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "分组不存在"
// @Router /api/admin/sections/{id} [delete]
func (c *SectionController) DeleteSection(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.SectionService.Delete(id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"ok": true})
}

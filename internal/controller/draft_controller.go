package controller

import (
	"survey_backend/internal/model"
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DraftController struct {
	DraftService *service.DraftService
}

func NewDraftController(draftService *service.DraftService) *DraftController {
	return &DraftController{DraftService: draftService}
}

// swagger:model DraftRequest
type DraftRequest struct {
	Email   string              `json:"email"`
	Answers []model.DraftAnswer `json:"answers"`
}

// GetDraft godoc
// @Summary 读取答题草稿
// @Description 没有草稿时不返回 data
// @Tags 答题
// @Produce  json
// @Param   slug path string true "问卷 slug"
// @Param   deviceId path string true "设备标识"
// @Success 200 {object} util.Response{data=model.Draft} "成功"
// @Failure 503 {object} util.Response "草稿存储未启用"
// @Router /api/surveys/{slug}/drafts/{deviceId} [get]
func (c *DraftController) GetDraft(ctx *gin.Context) {
	draft, err := c.DraftService.Load(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("deviceId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if draft == nil {
		util.Success(ctx, nil)
		return
	}
	util.Success(ctx, draft)
}

// SaveDraft godoc
// @Summary 保存答题草稿
// @Tags 答题
// @Accept  json
// @Produce  json
// @Param   slug path string true "问卷 slug"
// @Param   deviceId path string true "设备标识"
// @Param   body body DraftRequest true "草稿"
// @Success 200 {object} util.Response{data=model.Draft} "成功"
// @Router /api/surveys/{slug}/drafts/{deviceId} [put]
func (c *DraftController) SaveDraft(ctx *gin.Context) {
	var req DraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.DraftService.Save(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("deviceId"), req.Email, req.Answers)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, draft)
}

// ClearDraft godoc
// @Summary 清除答题草稿
// @Tags 答题
// @Produce  json
// @Param   slug path string true "问卷 slug"
// @Param   deviceId path string true "设备标识"
// @Success 200 {object} util.Response "成功"
// @Router /api/surveys/{slug}/drafts/{deviceId} [delete]
func (c *DraftController) ClearDraft(ctx *gin.Context) {
	if err := c.DraftService.Clear(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("deviceId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"ok": true})
}

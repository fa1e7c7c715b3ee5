package controller

import (
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InvitationController struct {
	InvitationService *service.InvitationService
}

func NewInvitationController(invitationService *service.InvitationService) *InvitationController {
	return &InvitationController{InvitationService: invitationService}
}

// swagger:model CreateInvitationRequest
type CreateInvitationRequest struct {
	SurveySlug string `json:"surveySlug" binding:"required"`
	Email      string `json:"email" binding:"required"`
}

// SendInvitations godoc
// @Summary 批量发送邀请
// @Description 为每个邮箱生成一次性令牌并发送邮件；message 中的 {{TOKEN}} 会被替换为令牌
// @Tags 邀请
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body service.BatchInput true "收件人和正文"
// @Success 200 {object} util.Response{data=service.BatchResult} "成功"
// @Failure 400 {object} util.Response "邮箱格式错误"
// @Failure 403 {object} util.Response "问卷未启用"
// @Router /api/admin/surveys/{id}/invitations [post]
func (c *InvitationController) SendInvitations(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req service.BatchInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.InvitationService.SendBatch(ctx.Request.Context(), surveyID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListInvitations godoc
// @Summary 邀请列表
// @Tags 邀请
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]model.Invitation} "成功"
// @Router /api/admin/surveys/{id}/invitations [get]
func (c *InvitationController) ListInvitations(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	invitations, err := c.InvitationService.List(surveyID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, invitations)
}

// CreateInvitation godoc
// @Summary 生成单个邀请令牌
// @Description 不发送邮件
// @Tags 邀请
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreateInvitationRequest true "问卷和邮箱"
// @Success 201 {object} util.Response{data=service.InvitationLink} "创建成功"
// @Router /api/admin/invitations [post]
func (c *InvitationController) CreateInvitation(ctx *gin.Context) {
	var req CreateInvitationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	link, err := c.InvitationService.CreateSingle(req.SurveySlug, req.Email)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, link)
}

// GetInvitation godoc
// @Summary 查询邀请
// @Tags 答题
// @Produce  json
// @Param   token path string true "邀请令牌"
// @Success 200 {object} util.Response{data=service.InvitationInfo} "成功"
// @Failure 400 {object} util.Response "邀请已使用"
// @Failure 404 {object} util.Response "邀请无效"
// @Router /api/invitations/{token} [get]
func (c *InvitationController) GetInvitation(ctx *gin.Context) {
	info, err := c.InvitationService.Lookup(ctx.Param("token"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

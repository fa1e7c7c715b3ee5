package controller

import (
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FlowController struct {
	FlowService *service.FlowService
}

func NewFlowController(flowService *service.FlowService) *FlowController {
	return &FlowController{FlowService: flowService}
}

// FlowRequest 多选题的 value 为 JSON 数组字符串
// swagger:model FlowRequest
type FlowRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Value      string `json:"value"`
}

// Evaluate godoc
// @Summary 条件跳转求值
// @Description 根据当前题目的回答返回需要显示、隐藏和清空的题目序号
// @Tags 答题
// @Accept  json
// @Produce  json
// @Param   slug path string true "问卷 slug"
// @Param   body body FlowRequest true "回答事件"
// @Success 200 {object} util.Response{data=flow.Result} "成功"
// @Failure 404 {object} util.Response "问卷或题目不存在"
// @Router /api/surveys/{slug}/flow [post]
func (c *FlowController) Evaluate(ctx *gin.Context) {
	var req FlowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.FlowService.Evaluate(ctx.Param("slug"), req.QuestionID, req.Value)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

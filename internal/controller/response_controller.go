package controller

import (
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResponseController struct {
	ResponseService *service.ResponseService
}

func NewResponseController(responseService *service.ResponseService) *ResponseController {
	return &ResponseController{ResponseService: responseService}
}

// Submit godoc
// @Summary 提交回答
// @Description 服务端按当前题目重新校验必答题，被条件跳转隐藏的题目不要求作答
// @Tags 答题
// @Accept  json
// @Produce  json
// @Param   body body service.SubmitRequest true "回答"
// @Success 201 {object} util.Response{data=service.SubmitResult} "提交成功"
// @Failure 400 {object} util.Response "校验失败或邀请已使用"
// @Failure 403 {object} util.Response "问卷未启用"
// @Failure 404 {object} util.Response "问卷或邀请不存在"
// @Router /api/responses [post]
func (c *ResponseController) Submit(ctx *gin.Context) {
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ResponseService.Submit(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

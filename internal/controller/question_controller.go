package controller

import (
	"survey_backend/internal/editing"
	"survey_backend/internal/model"
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// BulkSaveRequest items 为编辑后的完整题目列表，顺序即题目顺序
// swagger:model BulkSaveRequest
type BulkSaveRequest struct {
	SurveyID uint             `json:"surveyId" binding:"required,min=1"`
	Items    []model.Question `json:"items"`
}

type MoveRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

type SetOrderRequest struct {
	Ord int `json:"ord" binding:"required"`
}

type TemplateRequest struct {
	SectionID *uint `json:"sectionId"`
}

// ListQuestions godoc
// @Summary 题目列表
// @Tags 题目管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {object} util.Response{data=[]model.Question} "成功"
// @Failure 404 {object} util.Response "问卷不存在"
// @Router /api/admin/surveys/{id}/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	questions, err := c.QuestionService.List(surveyID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// BulkSave godoc
// @Summary 保存整张问卷的题目
// @Description 新增 id 为 0 的题目，更新已有题目，删除列表中不再出现的题目，全部在一个事务中完成
// @Tags 题目管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body BulkSaveRequest true "完整题目列表"
// @Success 200 {object} util.Response{data=service.SaveResult} "成功"
// @Failure 400 {object} util.Response "校验失败"
// @Failure 404 {object} util.Response "问卷不存在"
// @Failure 409 {object} util.Response "问卷正在被其他请求保存"
// @Router /api/admin/questions/bulk [post]
func (c *QuestionController) BulkSave(ctx *gin.Context) {
	var req BulkSaveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Items == nil {
		req.Items = []model.Question{}
	}

	result, err := c.QuestionService.Save(ctx.Request.Context(), req.SurveyID, req.Items)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// MoveQuestion godoc
// @Summary 拖拽排序
// @Description from 和 to 为从 0 开始的位置
// @Tags 题目管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   body body MoveRequest true "位置"
// @Success 200 {object} util.Response{data=service.SaveResult} "成功"
// @Failure 400 {object} util.Response "位置超出范围"
// @Router /api/admin/surveys/{id}/questions/move [post]
func (c *QuestionController) MoveQuestion(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuestionService.Move(ctx.Request.Context(), surveyID, *req.From, *req.To)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// SetQuestionOrder godoc
// @Summary 设置题目序号
// @Tags 题目管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   questionId path int true "题目ID"
// @Param   body body SetOrderRequest true "新序号，从 1 开始"
// @Success 200 {object} util.Response{data=service.SaveResult} "成功"
// @Router /api/admin/surveys/{id}/questions/{questionId}/order [put]
func (c *QuestionController) SetQuestionOrder(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(ctx, "questionId")
	if !ok {
		return
	}
	var req SetOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuestionService.SetOrder(ctx.Request.Context(), surveyID, questionID, req.Ord)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// RemoveQuestion godoc
// @Summary 删除题目
// @Description 删除后其余题目重新编号
// @Tags 题目管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response{data=service.SaveResult} "成功"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/admin/surveys/{id}/questions/{questionId} [delete]
func (c *QuestionController) RemoveQuestion(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(ctx, "questionId")
	if !ok {
		return
	}

	result, err := c.QuestionService.Remove(ctx.Request.Context(), surveyID, questionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AppendTemplate godoc
// @Summary 插入题目模板
// @Tags 题目管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Param   name path string true "模板名称"
// @Param   body body TemplateRequest false "目标分组"
// @Success 200 {object} util.Response{data=service.SaveResult} "成功"
// @Failure 404 {object} util.Response "模板不存在"
// @Router /api/admin/surveys/{id}/questions/templates/{name} [post]
func (c *QuestionController) AppendTemplate(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.QuestionService.AppendTemplate(ctx.Request.Context(), surveyID, ctx.Param("name"), req.SectionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// ListTemplates godoc
// @Summary 题目模板列表
// @Tags 题目管理
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]editing.Template} "成功"
// @Router /api/admin/templates [get]
func (c *QuestionController) ListTemplates(ctx *gin.Context) {
	util.Success(ctx, editing.Templates())
}

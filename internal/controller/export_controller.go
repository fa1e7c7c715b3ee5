package controller

import (
	"fmt"
	"net/http"
	"survey_backend/internal/service"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService *service.ExportService
}

func NewExportController(exportService *service.ExportService) *ExportController {
	return &ExportController{ExportService: exportService}
}

// ExportResponses godoc
// @Summary 导出回答
// @Description 下载 XLSX，每条回答一行
// @Tags 问卷管理
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security ApiKeyAuth
// @Param   id path int true "问卷ID"
// @Success 200 {file} file "XLSX 文件"
// @Failure 404 {object} util.Response "问卷不存在"
// @Router /api/admin/surveys/{id}/export [get]
func (c *ExportController) ExportResponses(ctx *gin.Context) {
	surveyID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	out, err := c.ExportService.Export(ctx.Request.Context(), surveyID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if out.ArchiveURL != "" {
		ctx.Header("X-Archive-URL", out.ArchiveURL)
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	ctx.Data(http.StatusOK, util.MimeXLSX, out.Data)
}

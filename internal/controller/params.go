package controller

import (
	"strconv"
	"survey_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// paramID 解析路径中的正整数 id，失败时直接返回 400
func paramID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

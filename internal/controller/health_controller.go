package controller

import (
	"context"
	"net/http"
	"survey_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// Live godoc
// @Summary 存活检查
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /healthz [get]
func (c *HealthController) Live(ctx *gin.Context) {
	util.Success(ctx, gin.H{"status": "ok"})
}

// Ready godoc
// @Summary 就绪检查
// @Description 检查数据库和 Redis 连接
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /readyz [get]
func (c *HealthController) Ready(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{"database": "up"}
	healthy := true

	sqlDB, err := c.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		components["database"] = "down"
		healthy = false
	}

	if c.Redis != nil {
		components["redis"] = "up"
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		}
	}

	if !healthy {
		util.ErrorWithData(ctx, http.StatusServiceUnavailable, "service unavailable", components)
		return
	}
	util.Success(ctx, gin.H{"status": "ok", "components": components})
}

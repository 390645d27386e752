package v1

import (
	"context"
	"net/http"

	"taskflow/internal/activity"
	"taskflow/pkg/api"
	"taskflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// CountFunc 统计某类记录的总数
type CountFunc func(ctx context.Context) (int64, error)

// ActivityHandler 管理端实时动态处理器
type ActivityHandler struct {
	hub    *activity.Hub
	totals map[string]CountFunc
}

// NewActivityHandler 创建实时动态处理器，totals 的键为集合名称
func NewActivityHandler(hub *activity.Hub, totals map[string]CountFunc) *ActivityHandler {
	return &ActivityHandler{hub: hub, totals: totals}
}

// Register 注册路由
func (h *ActivityHandler) Register(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/activity/ws", h.Stream)
	}
}

// Stats 返回聚合统计
func (h *ActivityHandler) Stats(c *gin.Context) {
	totals := make(map[string]int64, len(h.totals))
	for name, count := range h.totals {
		n, err := count(c.Request.Context())
		if err != nil {
			api.Error(c, http.StatusInternalServerError, "failed to count "+name, err)
			return
		}
		totals[name] = n
	}

	api.Success(c, gin.H{
		"totals":  totals,
		"events":  h.hub.Counts(),
		"viewers": h.hub.ClientCount(),
	})
}

// Stream 升级为 WebSocket 连接并推送实时事件
func (h *ActivityHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Failed to upgrade connection: %v", err)
		return
	}
	h.hub.AddClient(conn)
}

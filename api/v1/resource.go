package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/pkg/api"
	"taskflow/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// ResourceHandler 资源处理器，以 HAL 格式提供增删改查
type ResourceHandler[T any, P model.ResourcePtr[T]] struct {
	svc      service.ResourceService[T, P]
	basePath string
}

// NewResourceHandler 创建资源处理器实例
func NewResourceHandler[T any, P model.ResourcePtr[T]](svc service.ResourceService[T, P]) *ResourceHandler[T, P] {
	return &ResourceHandler[T, P]{svc: svc}
}

// Register 注册路由
func (h *ResourceHandler[T, P]) Register(r *gin.RouterGroup) {
	g := r.Group("/" + h.svc.Name())
	h.basePath = g.BasePath()
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PATCH("/:id", h.Patch)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *ResourceHandler[T, P]) selfHref(id string) string {
	return h.basePath + "/" + id
}

// List 分页列出资源
func (h *ResourceHandler[T, P]) List(c *gin.Context) {
	claims := middleware.MustGetUserFromContext(c)

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	page, size = service.NormalizePage(page, size)

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if key == "page" || key == "size" || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	items, total, err := h.svc.List(c.Request.Context(), claims.UserID, filters, page, size)
	if err != nil {
		h.fail(c, err)
		return
	}

	embedded := make([]json.RawMessage, 0, len(items))
	for i := range items {
		res := P(&items[i])
		data, err := api.WithSelfLink(res, h.selfHref(res.GetID()))
		if err != nil {
			api.Error(c, http.StatusInternalServerError, "failed to encode resource", err)
			return
		}
		embedded = append(embedded, data)
	}

	api.HALCollection(c, h.svc.Name(), embedded, api.PageHref(h.basePath, page, size), api.NewPageMeta(page, size, total))
}

// Create 创建资源
func (h *ResourceHandler[T, P]) Create(c *gin.Context) {
	claims := middleware.MustGetUserFromContext(c)

	body, err := c.GetRawData()
	if err != nil {
		api.Error(c, http.StatusBadRequest, "failed to read body", err)
		return
	}

	res, err := h.svc.Create(c.Request.Context(), claims.UserID, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", h.selfHref(res.GetID()))
	api.HALResource(c, http.StatusCreated, res, h.selfHref(res.GetID()))
}

// Get 获取资源
func (h *ResourceHandler[T, P]) Get(c *gin.Context) {
	claims := middleware.MustGetUserFromContext(c)

	res, err := h.svc.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	api.HALResource(c, http.StatusOK, res, h.selfHref(res.GetID()))
}

// Patch 以 merge-patch 更新资源
func (h *ResourceHandler[T, P]) Patch(c *gin.Context) {
	claims := middleware.MustGetUserFromContext(c)

	patch, err := c.GetRawData()
	if err != nil {
		api.Error(c, http.StatusBadRequest, "failed to read body", err)
		return
	}

	res, err := h.svc.Patch(c.Request.Context(), claims.UserID, c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	api.HALResource(c, http.StatusOK, res, h.selfHref(res.GetID()))
}

// Delete 删除资源
func (h *ResourceHandler[T, P]) Delete(c *gin.Context) {
	claims := middleware.MustGetUserFromContext(c)

	if err := h.svc.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ResourceHandler[T, P]) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		api.Error(c, http.StatusNotFound, h.svc.Name()+" not found", nil)
	case service.IsInvalid(err):
		api.Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		api.Error(c, http.StatusInternalServerError, "internal error", err)
	}
}

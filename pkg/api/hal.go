package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/sjson"
)

// HALContentType HAL 响应的内容类型
const HALContentType = "application/hal+json"

// PageMeta 分页信息
type PageMeta struct {
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPageMeta 根据总数计算分页信息
func NewPageMeta(number, size int, total int64) PageMeta {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return PageMeta{Size: size, Number: number, TotalElements: total, TotalPages: pages}
}

// WithSelfLink 在资源 JSON 上附加 _links.self.href
func WithSelfLink(v interface{}, href string) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "_links.self.href", href)
}

// HALResource 返回单个资源
func HALResource(c *gin.Context, status int, v interface{}, href string) {
	data, err := WithSelfLink(v, href)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to encode resource", err)
		return
	}
	c.Data(status, HALContentType, data)
}

// HALCollection 返回分页集合，items 放在 _embedded.<name> 下
func HALCollection(c *gin.Context, name string, items []json.RawMessage, self string, page PageMeta) {
	if items == nil {
		items = []json.RawMessage{}
	}
	body := map[string]interface{}{
		"_embedded": map[string]interface{}{name: items},
		"_links": map[string]interface{}{
			"self": map[string]string{"href": self},
		},
		"page": page,
	}
	data, err := json.Marshal(body)
	if err != nil {
		Error(c, http.StatusInternalServerError, "failed to encode collection", err)
		return
	}
	c.Data(http.StatusOK, HALContentType, data)
}

// PageHref 拼接分页链接
func PageHref(base string, number, size int) string {
	return fmt.Sprintf("%s?page=%d&size=%d", base, number, size)
}

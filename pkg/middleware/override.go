package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideHeader 方法覆盖请求头
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride 把带覆盖头的 POST 请求改写为目标方法。
// gin 在中间件之前完成路由匹配，所以这里包装的是 http.Handler。
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := strings.ToUpper(strings.TrimSpace(r.Header.Get(MethodOverrideHeader))); overridable[m] {
				r.Method = m
				r.Header.Del(MethodOverrideHeader)
			}
		}
		next.ServeHTTP(w, r)
	})
}

package reconcile

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var bearerPattern = regexp.MustCompile(`(?i)^bearer\s+(\S+)`)

// 精确匹配的令牌字段名（小写比较）
var exactTokenKeys = map[string]bool{
	"token":        true,
	"access_token": true,
	"accesstoken":  true,
	"jwt":          true,
}

// ExtractToken 在响应体中递归查找令牌，找不到时回退到 Authorization 响应头
func ExtractToken(body []byte, header http.Header) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		if token := searchToken(gjson.ParseBytes(body)); token != "" {
			return token
		}
	}
	if header != nil {
		if m := bearerPattern.FindStringSubmatch(strings.TrimSpace(header.Get("Authorization"))); m != nil {
			return m[1]
		}
	}
	return ""
}

// searchToken 逐层查找：先精确字段名，再以 token 结尾的字段名，
// 再看起来像 JWT 的字符串值，最后深入子对象和数组
func searchToken(v gjson.Result) string {
	if v.Type == gjson.String {
		if looksSigned(v.Str) {
			return v.Str
		}
		return ""
	}
	if !v.IsObject() && !v.IsArray() {
		return ""
	}

	matchers := []func(key string, val gjson.Result) bool{
		func(key string, val gjson.Result) bool { return exactTokenKeys[strings.ToLower(key)] },
		func(key string, val gjson.Result) bool { return strings.HasSuffix(strings.ToLower(key), "token") },
		func(key string, val gjson.Result) bool { return looksSigned(val.Str) },
	}

	if v.IsObject() {
		for _, match := range matchers {
			var found string
			v.ForEach(func(key, val gjson.Result) bool {
				if val.Type == gjson.String && val.Str != "" && match(key.String(), val) {
					found = val.Str
					return false
				}
				return true
			})
			if found != "" {
				return found
			}
		}
	}

	var found string
	v.ForEach(func(_, val gjson.Result) bool {
		if val.IsObject() || val.IsArray() || (v.IsArray() && val.Type == gjson.String) {
			found = searchToken(val)
		}
		return found == ""
	})
	return found
}

func looksSigned(s string) bool {
	return strings.HasPrefix(s, "eyJ")
}

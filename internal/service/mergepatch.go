package service

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// readOnlyFields 合并补丁不能修改的字段
var readOnlyFields = map[string]bool{
	"id":         true,
	"owner_id":   true,
	"created_at": true,
	"updated_at": true,
}

// applyMergePatch 按 RFC 7396 将 patch 合并到 doc
func applyMergePatch(doc, patch []byte) ([]byte, error) {
	if !gjson.ValidBytes(patch) {
		return nil, ErrInvalidPatch
	}
	p := gjson.ParseBytes(patch)
	if !p.IsObject() {
		return nil, ErrInvalidPatch
	}
	return mergeObject(doc, "", p, true)
}

func mergeObject(doc []byte, prefix string, patch gjson.Result, top bool) ([]byte, error) {
	var err error
	patch.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if top && readOnlyFields[name] {
			return true
		}
		path := prefix + escapePath(name)

		switch {
		case value.Type == gjson.Null:
			doc, err = sjson.DeleteBytes(doc, path)
		case value.IsObject() && gjson.GetBytes(doc, path).IsObject():
			doc, err = mergeObject(doc, path+".", value, false)
		default:
			doc, err = sjson.SetRawBytes(doc, path, []byte(value.Raw))
		}
		return err == nil
	})
	return doc, err
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`)

func escapePath(key string) string {
	return pathEscaper.Replace(key)
}

// Package web 内嵌页面模板，并提供模板使用的辅助函数。
package web

import (
	"embed"
	"html/template"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// DateTimeLocalLayout 对应 <input type="datetime-local"> 的取值格式。
const DateTimeLocalLayout = "2006-01-02T15:04"

// Funcs 是所有页面共享的模板函数。
var Funcs = template.FuncMap{
	"formatDate": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format("2 January 2006, 15:04")
	},
	"selected": func(current string, id uint) bool {
		return current != "" && current == strconv.FormatUint(uint64(id), 10)
	},
	"fieldError": func(errs map[string]string, field string) string {
		return errs[field]
	},
}

// Templates 解析全部内嵌模板，模板名即文件名（如 index.html）。
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

package main

import (
	"embed"
	"html/template"
	"strings"

	"eventplanner-web/internal/api"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"statusLabel": statusLabel,
	"lower":       strings.ToLower,
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
}

func statusLabel(s api.AttendanceStatus) string {
	switch s {
	case api.StatusGoing:
		return "Going"
	case api.StatusInterested:
		return "Interested"
	case api.StatusNotGoing:
		return "Not going"
	case api.StatusInvited, "":
		return "Invited"
	default:
		return string(s)
	}
}

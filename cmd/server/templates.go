package main

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*
var templateFiles embed.FS

func templateFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// parseTemplate parses a page together with the shared layout.
func parseTemplate(name string) (*template.Template, error) {
	return template.ParseFS(templateFS(), "layout.html", name)
}

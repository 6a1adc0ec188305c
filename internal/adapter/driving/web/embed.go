package web

//go:generate go tool templ generate -path ./templates

import "embed"

// StaticFS holds the embedded static assets (history page stylesheet).
//
//go:embed static/*
var StaticFS embed.FS

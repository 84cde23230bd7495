package web

import "embed"

// TemplatesFS holds the page layouts and HTMX fragments.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the client-side HTMX event hooks.
//
//go:embed static/*
var StaticFS embed.FS

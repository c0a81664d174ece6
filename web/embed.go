package web

import "embed"

// Templates holds the storefront and admin console HTML templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds stylesheets and other browser assets served under /static/.
//
//go:embed static/**/*
var Static embed.FS

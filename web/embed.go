// Package web carries the console's templates and browser assets.
package web

import "embed"

// Templates holds layouts, partials and one file per page.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and script served under /static/.
//
//go:embed static/**/*
var Static embed.FS

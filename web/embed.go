package web

import "embed"

// Templates embeds the print-layout HTML templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

package showreel

import "embed"

// ContentFS holds the static portfolio catalog.
//
//go:embed content
var ContentFS embed.FS

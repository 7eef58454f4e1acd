package assets

import "embed"

//go:embed css images
var AssetsFS embed.FS

// Package static embeds the dashboard stylesheet.
package static

import "embed"

// FS serves files under /static/.
//
//go:embed *.css
var FS embed.FS

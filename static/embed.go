// Package static embeds the compiled front-end assets served under /static/.
package static

import "embed"

//go:embed dist
var FS embed.FS

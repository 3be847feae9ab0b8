// Package assets embeds the static files served under /ui/static/.
package assets

import "embed"

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded static asset tree.
func StaticFS() embed.FS {
	return staticFS
}

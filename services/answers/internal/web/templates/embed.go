// Package templates provides the embedded HTML pages of the answers service:
// the landing page and the search pages of each representation.
package templates

import "embed"

//go:embed *.html
var FS embed.FS

// Package static holds the stylesheet and scripts served under /static/.
package static

import "embed"

// FS contains the static assets, rooted at this directory
//
//go:embed style.css record.js
var FS embed.FS

// Package static holds the embedded front-end page served on the root
// and profile-style paths.
package static

import (
	_ "embed"
)

//go:embed index.html
var Page []byte

package site

import (
	"embed"
	"io/fs"
)

//go:embed static/index.html
var embedded embed.FS

// Files returns the landing page assets with static/ stripped.
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err) // static/ is embedded at build time
	}
	return sub
}

// Package web embeds the HTML templates and static assets served by the store.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() http.FileSystem {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

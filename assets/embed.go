// Package assets bundles the static files the server and CLI ship with:
// the classic example puzzle and the SQL migrations.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed example.txt sql/*.sql
var FS embed.FS

// Example returns the classic three-board example puzzle text.
func Example() string {
	b, err := FS.ReadFile("example.txt")
	if err != nil {
		// embedded at build time; unreachable
		panic(err)
	}
	return string(b)
}

// Migrations returns the SQL migration files rooted at their directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}

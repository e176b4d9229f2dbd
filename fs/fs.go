// Package appfs embeds the files the binaries need at runtime: database migrations, the base
// index content and the page and email templates.
package appfs

import "embed"

//go:embed migrations assets all:templates
var FS embed.FS

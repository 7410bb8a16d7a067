// Package appfs embeds the files the binaries ship with: SQL migrations, email templates and built-in content.
package appfs

import "embed"

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "assets/templates/email"
	ContentDir        = "assets/content"
)

//go:embed migrations/*.sql assets/templates/email/* assets/content/*.yaml
var FS embed.FS

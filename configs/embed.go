// Package configs embeds the configuration templates written by
// `kbsearch config init`.
//
// Configuration precedence (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/kbsearch/config.yaml)
//  3. Project config (.kbsearch.yaml)
//  4. Environment variables (KBSEARCH_*)
package configs

import _ "embed"

// UserConfigTemplate is written to the user config path by `kbsearch config init --user`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written to .kbsearch.yaml by `kbsearch config init`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

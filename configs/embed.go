// Package configs provides the embedded configuration template for
// csight. The template is embedded at build time so `csight config
// init` works in every distribution, source builds included.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (internal/config NewConfig)
//  2. Project config (.csight.yaml)
//  3. Environment variables (CSIGHT_*)
package configs

import _ "embed"

// ProjectConfigTemplate is the annotated template written to
// .csight.yaml by `csight config init`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

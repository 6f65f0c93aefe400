// Package api embeds the OpenAPI document served and enforced by the HTTP adapter.
package api

import _ "embed"

// Spec is the raw OpenAPI 3 document.
//
//go:embed openapi.yaml
var Spec []byte

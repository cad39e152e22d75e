// Package schema provides the embedded diff payload JSON schema.
package schema

import "embed"

// PayloadSchemaFS contains the embedded diff payload JSON schema.
//
//go:embed payload-schema.json
var PayloadSchemaFS embed.FS

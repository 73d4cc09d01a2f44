// Package schema provides the canonical retail schema diagram.
package schema

import _ "embed"

// DBML contains the retail schema in DBML form. It is the source of truth
// the Go models are checked against.
//
//go:embed retail.dbml
var DBML string

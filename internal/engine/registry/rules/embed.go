// Package rules embeds the default rule configuration documents.
package rules

import "embed"

// FS contains the embedded message catalog, lexical dictionaries,
// forbidden-pattern lists, and gate configuration documents.
//
//go:embed *.yaml gates/*.yaml
var FS embed.FS

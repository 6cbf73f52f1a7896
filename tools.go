//go:build tools

// Package main's build keeps a blank reference to the code generators
// it depends on (stringer, invoked via the go:generate directives in
// vm/scanner.go, vm/chunk.go, vm/compiler.go) so `go mod tidy` doesn't
// drop them from go.mod even though no non-generated file imports them.
package main

import (
	_ "golang.org/x/tools/cmd/stringer"
)

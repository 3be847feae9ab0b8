// Package main generates markdown reference docs from the OpenAPI
// contract and the declarative seed format.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"posgate/internal/docsgen/openapi"
	"posgate/internal/docsgen/seeds"
)

func main() {
	openapiPath := flag.String("openapi", "internal/api/openapi.yaml", "path to the OpenAPI spec")
	outDir := flag.String("outdir", "docs/reference/generated", "output directory for generated docs")
	flag.Parse()

	if err := openapi.Generate(*openapiPath, filepath.Join(*outDir, "api")); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: generate API docs: %v\n", err)
		os.Exit(1)
	}

	if err := seeds.Generate(filepath.Join(*outDir, "seeds")); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: generate seed docs: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/umputun/feedrewriter/pkg/config"
)

// generates json schema of feedrewriter config, output path is the first argument
func main() {
	schema, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("failed to generate schema: %v", err)
	}
	schema.Title = "feedrewriter configuration"
	schema.Description = "Feeds, rewrite model, extraction and publishing settings of feedrewriter"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal schema: %v", err)
	}

	out := "schema.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		log.Fatalf("failed to write %s: %v", out, err)
	}
	fmt.Printf("schema written to %s\n", out)
}

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/milk9111/npcbrain/asset"
	"github.com/milk9111/npcbrain/library"
)

func main() {
	out := flag.String("o", "", "write the schema to this file instead of stdout")
	kinds := flag.Bool("kinds", false, "list the registered decision and action kinds instead")
	flag.Parse()

	r := library.NewRegistry()
	if *kinds {
		for _, k := range r.DecisionKinds() {
			fmt.Println("decision", k)
		}
		for _, k := range r.ActionKinds() {
			fmt.Println("action  ", k)
		}
		return
	}

	data, err := json.MarshalIndent(asset.Schema(r), "", "  ")
	if err != nil {
		log.Fatalf("fsmschema: marshal: %v", err)
	}
	data = append(data, '\n')

	if *out == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("fsmschema: write %s: %v", *out, err)
	}
	log.Printf("wrote %s", *out)
}

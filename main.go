package main

import (
	"log"

	"github.com/transitflow/busalloc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

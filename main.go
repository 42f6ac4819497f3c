package main

import (
	"log"

	"github.com/ptit-ai/unirag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"os"

	"github.com/soundprediction/grafo/cmd/grafo"
)

func main() {
	if err := grafo.Execute(); err != nil {
		os.Exit(1)
	}
}

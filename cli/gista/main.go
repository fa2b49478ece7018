package main

import (
	"os"

	gistacmder "github.com/gistahq/gista/cmd/gista"
)

func main() {
	cmd := gistacmder.NewGistaCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"log"

	"github.com/procuro/rfqmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

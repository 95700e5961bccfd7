package main

import (
	"os"

	"github.com/spigell/applicant-pipeline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

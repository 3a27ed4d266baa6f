package main

import (
	"os"

	"techspec/cmd"
	"techspec/pkg/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync(logging.Logger)
	if err != nil {
		os.Exit(1)
	}
}

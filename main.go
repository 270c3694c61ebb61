package main

import (
	"os"

	"github.com/rstorcloud/alfredo/cmd"
	"github.com/rstorcloud/alfredo/pkg/logger"
)

func main() {
	exitCode := cmd.Execute()

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

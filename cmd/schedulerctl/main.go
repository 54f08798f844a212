package main

import (
	"fmt"
	"os"

	"schedulerd/internal/schedulerctl"
)

func main() {
	root := schedulerctl.BuildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

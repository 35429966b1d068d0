package main

import (
	"fmt"
	"os"

	"github.com/temirov/bagaudit/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the bagaudit command-line application.
func main() {
	executionError := cli.Execute()
	exitStatus, reportError := cli.ExitStatus(executionError)
	if reportError {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(exitStatus)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screenocr"}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screenocr",
		Short: "Capture screen regions of code and copy them as indented text",
		Long: `screenocr captures a user-selected screen region, recognizes its text
with Tesseract, reconstructs the code layout (lines and indentation)
from the positioned fragments, repairs common OCR misreads in Python
syntax, and delivers the result to the clipboard or stdout.

A resident daemon (screenocr daemon) owns the global hotkey and serves
delegated captures so repeated invocations stay fast.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCaptureCmd())
	cmd.AddCommand(newDaemonCmd())
	cmd.AddCommand(newOCRCmd())
	return cmd
}

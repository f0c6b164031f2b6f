// Command genaictl runs the GenAI pipelines from the command line and prints
// the JSON result on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "genaictl",
		Short:         "Generate interview questions and applicant summaries",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newGenerateCmd(),
		newSummarizeCmd(),
		newSuggestCmd(),
		newApplicantCmd(),
		newAnswerCmd(),
		newHashTokenCmd(),
	)
	return root
}

package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/JustZavala/onboard/internal/flow"
	"github.com/spf13/cobra"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "List the built-in onboarding flows",
	Args:  cobra.NoArgs,
	RunE:  runFlows,
}

var flowsShowCmd = &cobra.Command{
	Use:   "show <name|file>",
	Short: "Print a flow definition as YAML",
	Long: `Print a flow definition as YAML.

The argument is a built-in flow name or the path to a YAML definition,
which is validated before it is printed. Use the output as a starting
point for a custom --flow-file.`,
	Args: cobra.ExactArgs(1),
	RunE: runFlowsShow,
}

func init() {
	flowsCmd.AddCommand(flowsShowCmd)
}

func runFlows(cmd *cobra.Command, args []string) error {
	reg := flow.DefaultRegistry()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, name := range reg.Names() {
		def, err := reg.Lookup(name)
		if err != nil {
			return err
		}
		marker := " "
		if name == flow.DefaultFlow {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\t%d steps\t%s\n", marker, name, len(def.Steps), def.Description)
	}
	return w.Flush()
}

func runFlowsShow(cmd *cobra.Command, args []string) error {
	reg := flow.DefaultRegistry()

	def, err := reg.Lookup(args[0])
	if errors.Is(err, flow.ErrUnknownFlow) {
		if _, statErr := os.Stat(args[0]); statErr != nil {
			return err
		}
		def, err = flow.LoadDefinition(args[0])
	}
	if err != nil {
		return err
	}

	data, err := flow.MarshalDefinition(def)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/assistentes/backend/internal/model/persona"
)

func assistantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assistants",
		Short: "List the available assistants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printAssistants(cmd.OutOrStdout(), persona.NewMemoryStore(persona.Seed()))
		},
	}
}

func printAssistants(out io.Writer, store persona.Store) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOME\tEMOJI")
	for _, p := range store.List() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Emoji)
	}
	return w.Flush()
}

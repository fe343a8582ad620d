package main

import (
	"fmt"
	"os"

	"github.com/arborui/arbor"
	"github.com/arborui/arbor/internal/logging"
	mcpAdapter "github.com/arborui/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the arbor editor as an MCP server over stdio.
This allows AI agents (like Claude Desktop) to edit the component tree and trigger events as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		docPath, _ := cmd.Flags().GetString("document")

		// Logs go to stderr; stdout carries the MCP transport.
		editor := arbor.New(arbor.WithLogger(logging.New(logging.ParseLevel("warn"))))

		if docPath != "" {
			data, err := os.ReadFile(docPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
				os.Exit(1)
			}
			if err := editor.Import(data); err != nil {
				fmt.Fprintf(os.Stderr, "Error importing document: %v\n", err)
				os.Exit(1)
			}
		}

		srv := mcpAdapter.NewServer(editor, arbor.Version)
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("document", "d", "", "Document to load into the editor on startup")
}

package main

import (
	"fmt"
	"os"

	"github.com/arborui/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document.json>",
	Short: "Check a page document for consistency",
	Long:  `Parses a page document and reports structural violations: missing or duplicate ids, unknown kinds, children on leaf components, misplaced page roots.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Document is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := domain.ParseDocument(data)
	if err != nil {
		return err
	}

	if err := domain.ValidateTree(doc.Root); err != nil {
		for _, violation := range domain.StructureErrors(err) {
			fmt.Printf("  - %v\n", violation)
		}
		return fmt.Errorf("%d structural violation(s)", len(domain.StructureErrors(err)))
	}
	return nil
}

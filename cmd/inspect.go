package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/s0up4200/gopdfctl/pdfinfo"
)

var (
	inspectPassword string
	inspectJSON     bool
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:               "inspect <file.pdf>",
	Short:             "Validate a PDF and show its metadata",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: initializeLogging,
	RunE:              runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectPassword, "password", "", "user password of a protected document")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the result as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := pdfinfo.InspectReader(f, inspectPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintf(out, "File:      %s\n", args[0])
	fmt.Fprintf(out, "Pages:     %d\n", info.Pages)
	fmt.Fprintf(out, "Version:   %s\n", info.Version)
	fmt.Fprintf(out, "Size:      %d bytes\n", info.Size)
	fmt.Fprintf(out, "Encrypted: %t\n", info.Encrypted)
	if info.Title != "" {
		fmt.Fprintf(out, "Title:     %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Fprintf(out, "Author:    %s\n", info.Author)
	}
	if info.Producer != "" {
		fmt.Fprintf(out, "Producer:  %s\n", info.Producer)
	}
	return nil
}

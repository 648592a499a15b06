package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Regenerate the shared snapshot",
	Long: `Rebuild the markdown snapshot read by the sibling system and overwrite
EXPORT_PATH. The nightly review and weekly maintenance jobs do this on their own.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.exporter.Export(cmd.Context()); err != nil {
		return err
	}
	fmt.Printf("✅ Snapshot written to %s\n", a.exporter.Path())
	return nil
}

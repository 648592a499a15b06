package commands

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wonny/analyst/internal/knowledge"
)

// knowledgeCmd represents the knowledge command
var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Maintain the knowledge store",
	Long: `Run the knowledge store sweeps by hand or inspect its size.

Subcommands:
  consolidate - fold daily artifacts older than 7 days into weekly summaries
  prune       - delete analysis artifacts older than 30 days
  stats       - show artifact counts and size`,
}

var (
	knowledgeConsolidateCmd = &cobra.Command{
		Use:   "consolidate",
		Short: "Consolidate aged daily artifacts",
		RunE:  runConsolidate,
	}

	knowledgePruneCmd = &cobra.Command{
		Use:   "prune",
		Short: "Prune aged analysis artifacts",
		RunE:  runPrune,
	}

	knowledgeStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge store statistics",
		RunE:  runKnowledgeStats,
	}
)

func init() {
	rootCmd.AddCommand(knowledgeCmd)
	knowledgeCmd.AddCommand(knowledgeConsolidateCmd)
	knowledgeCmd.AddCommand(knowledgePruneCmd)
	knowledgeCmd.AddCommand(knowledgeStatsCmd)
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.maintainer.Consolidate()
	if err != nil {
		return err
	}
	printSweep("Consolidation", res)
	return nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.maintainer.Prune()
	if err != nil {
		return err
	}
	printSweep("Pruning", res)
	return nil
}

func runKnowledgeStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.knowledge.Stats()
	if err != nil {
		return err
	}

	printHeader("Knowledge Store")
	fmt.Printf("  Directory : %s\n", a.cfg.Storage.KnowledgeDir)
	fmt.Printf("  Artifacts : %s\n", humanize.Comma(int64(st.Files)))
	fmt.Printf("  Size      : %s\n", humanize.Bytes(uint64(st.Bytes)))
	if st.Oldest != nil {
		fmt.Printf("  Oldest    : %s\n", humanize.Time(*st.Oldest))
		fmt.Printf("  Newest    : %s\n", humanize.Time(*st.Newest))
	}

	categories := make([]string, 0, len(st.ByCategory))
	for c := range st.ByCategory {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Printf("  %-9s : %d\n", c, st.ByCategory[knowledge.Category(c)])
	}
	return nil
}

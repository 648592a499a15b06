package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/analyst/internal/review"
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Inspect the review queue",
}

var reviewPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List calls eligible for the next nightly review",
	RunE:  runReviewPending,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewPendingCmd)
}

func runReviewPending(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	pending := a.ledger.PendingReviews(cmd.Context())
	batch := review.SelectBatch(pending)

	printHeader("Pending Reviews")
	fmt.Printf("  Eligible : %d\n", len(pending))
	fmt.Printf("  Next batch: %d (max %d)\n\n", len(batch), review.MaxBatch)
	fmt.Print(review.RenderList(batch))
	return nil
}

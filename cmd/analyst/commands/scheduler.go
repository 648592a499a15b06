package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run or inspect the job scheduler",
	Long: `Start the scheduler daemon or manage its jobs.

Subcommands:
  start   - start the poll loop
  list    - list registered jobs and their windows
  run     - run one job immediately
  status  - show job statistics and today's guards

Example:
  go run ./cmd/analyst scheduler start
  go run ./cmd/analyst scheduler run weekly_maintenance`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Start the poll loop and dispatch jobs inside their local-time windows.

Registered jobs (local time):
- morning_scan:       weekdays 08:30
- eod_scan:           weekdays 16:30
- nightly_review:     weekdays 20:00
- weekly_review:      Friday 20:30
- weekly_maintenance: Saturday 09:00

Each job runs at most once per local day. Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job statistics",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.scheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := sched.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	fmt.Println("✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.scheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Registered jobs (%s):\n", a.cfg.Location())
	for _, st := range sched.SortedStats() {
		fmt.Printf("  - %-20s %s\n", st.JobName, st.Window)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.scheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("❌ job %s failed after %s: %s", jobName, result.Duration, result.Error)
	}

	fmt.Printf("✅ Job %s completed in %s\n", jobName, result.Duration)
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	sched, err := a.scheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, stat := range sched.SortedStats() {
		fmt.Printf("📊 %s\n", stat.JobName)
		fmt.Printf("   Window: %s\n", stat.Window)
		fmt.Printf("   Ran today: %v\n", stat.RanToday)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}

	st := a.ledger.Load(cmd.Context())
	fmt.Printf("Last nightly review: %s\n", orNone(st.LastNightlyReviewDate))
	fmt.Printf("Last weekly review:  %s\n", orNone(st.LastWeeklyReviewDate))
	return nil
}

package commands

import (
	"fmt"

	"github.com/wonny/analyst/internal/knowledge"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// printHeader prints a formatted section header
func printHeader(title string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", title)
	fmt.Println("───────────────────────────────────────────────────────────")
}

// printSweep prints a knowledge sweep result
func printSweep(name string, res knowledge.SweepResult) {
	printHeader(name)
	if !res.Changed() {
		fmt.Println("  Nothing to do")
		return
	}
	fmt.Printf("  Processed : %d\n", res.Processed)
	fmt.Printf("  Deleted   : %d\n", res.Deleted)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

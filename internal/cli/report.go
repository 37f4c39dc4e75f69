package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/gosniff/gosniff/internal/record"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize a recorded tracing session",
		Long: `Load a JSON call report written by a tracing session and print summary
metrics: unique functions seen, the slowest and most-called functions, and
average resource usage per call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(file)
			if err != nil {
				return err
			}
			printSummary(cmd, rep)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "gosniff_calls.json", "path to the JSON call report")
	return cmd
}

func loadReport(path string) (*record.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	var rep record.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &rep, nil
}

// summary holds the metrics computed over every record in the report,
// including nested calls.
type summary struct {
	totalCalls      int
	uniqueFunctions int
	slowestFunction string
	slowestSeconds  float64
	mostCalled      string
	mostCalledCount int
	avgCPU          float64
	avgMemory       float64
	avgIO           float64
}

func summarize(rep *record.Report) summary {
	counts := map[string]int{}
	slowest := map[string]float64{}

	var totalCPU, totalMem, totalIO float64
	total := 0

	var walk func(recs []*record.CallRecord)
	walk = func(recs []*record.CallRecord) {
		for _, r := range recs {
			total++
			counts[r.Function]++
			if r.ExecutionTime > slowest[r.Function] {
				slowest[r.Function] = r.ExecutionTime
			}
			totalCPU += r.CPUUsage
			totalMem += float64(r.MemoryUsage)
			totalIO += float64(r.IOOperations)
			walk(r.CallsMade)
		}
	}
	walk(rep.Calls)

	s := summary{
		totalCalls:      total,
		uniqueFunctions: len(counts),
	}
	for fn, n := range counts {
		if n > s.mostCalledCount || (n == s.mostCalledCount && fn < s.mostCalled) {
			s.mostCalled, s.mostCalledCount = fn, n
		}
	}
	for fn, secs := range slowest {
		if secs > s.slowestSeconds || (secs == s.slowestSeconds && fn < s.slowestFunction) {
			s.slowestFunction, s.slowestSeconds = fn, secs
		}
	}
	if total > 0 {
		s.avgCPU = totalCPU / float64(total)
		s.avgMemory = totalMem / float64(total)
		s.avgIO = totalIO / float64(total)
	}
	return s
}

func printSummary(cmd *cobra.Command, rep *record.Report) {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	value := color.New(color.FgGreen).SprintFunc()

	s := summarize(rep)

	cmd.Printf("%s\n", heading("Session "+rep.SessionID))
	cmd.Printf("  Window:    %s .. %s\n",
		rep.StartedAt.Format("15:04:05.000"), rep.StoppedAt.Format("15:04:05.000"))
	cmd.Printf("  Calls:     %s (%s unique functions)\n",
		value(s.totalCalls), value(s.uniqueFunctions))

	if s.totalCalls == 0 {
		cmd.Println("  No calls were recorded in this session.")
		return
	}

	cmd.Printf("  Slowest:   %s (%.6fs)\n", value(s.slowestFunction), s.slowestSeconds)
	cmd.Printf("  Hottest:   %s (%dx)\n", value(s.mostCalled), s.mostCalledCount)
	cmd.Printf("  Avg CPU:   %.6fs\n", s.avgCPU)
	cmd.Printf("  Avg mem:   %.0f bytes\n", s.avgMemory)
	cmd.Printf("  Avg I/O:   %.1f ops\n", s.avgIO)
}

package cmd

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"runc-go/container"
)

var eventsCmd = &cobra.Command{
	Use:   "events <container-id>",
	Short: "Display container resource usage statistics",
	Long:  `Read the container's cgroup and print a human-readable usage summary.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	stats, err := container.Stats(GetContext(), args[0], GetStateRoot())
	if err != nil {
		return err
	}

	fmt.Printf("memory usage:   %s (max: %s, limit: %s, failcnt: %d)\n",
		units.BytesSize(float64(stats.MemoryUsage)),
		units.BytesSize(float64(stats.MemoryMaxUsage)),
		units.BytesSize(float64(stats.MemoryLimit)),
		stats.MemoryFailCount)
	fmt.Printf("pids:           %d (limit: %d)\n", stats.PidsCurrent, stats.PidsLimit)
	fmt.Printf("cpu usage:      %s\n", units.HumanDuration(time.Duration(stats.CPUUsageNanos)))

	return nil
}

package schedulerctl

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"schedulerd/pkg/types"
)

// CLIConfig holds the persistent flags shared by every subcommand.
type CLIConfig struct {
	ServerURL string
	Timeout   time.Duration
	JSON      bool
}

// BuildRootCmd constructs the schedulerctl Cobra command tree.
func BuildRootCmd() *cobra.Command {
	cfg := &CLIConfig{ServerURL: "http://localhost:8080", Timeout: 10 * time.Second}

	root := &cobra.Command{
		Use:           "schedulerctl",
		Short:         "Operator CLI for a running schedulerd instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "schedulerd base URL")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	root.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "print raw JSON instead of a table")

	root.AddCommand(
		newSubmitCmd(cfg),
		newStatusCmd(cfg),
		newCancelCmd(cfg),
		newStatsCmd(cfg),
	)
	return root
}

func newSubmitCmd(cfg *CLIConfig) *cobra.Command {
	var class string
	var priority string
	var payloadRaw string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new task and print its id",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePriority(priority)
			if err != nil {
				return err
			}
			var payload any
			if payloadRaw != "" {
				if err := json.Unmarshal([]byte(payloadRaw), &payload); err != nil {
					return fmt.Errorf("--payload must be valid JSON: %w", err)
				}
			}
			c := NewClient(cfg.ServerURL, cfg.Timeout)
			id, err := c.Submit(types.Class(class), p, payload)
			if err != nil {
				return err
			}
			if cfg.JSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{"task_id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d submitted\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&class, "class", "", "task class: lm|tts|image")
	cmd.Flags().StringVar(&priority, "priority", "medium", "priority: low|medium|high")
	cmd.Flags().StringVar(&payloadRaw, "payload", "", "task payload as a JSON literal")
	cmd.MarkFlagRequired("class")
	return cmd
}

func newStatusCmd(cfg *CLIConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show a task's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			c := NewClient(cfg.ServerURL, cfg.Timeout)
			info, err := c.Status(id)
			if err != nil {
				return err
			}
			if cfg.JSON {
				return json.NewEncoder(os.Stdout).Encode(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d: class=%s priority=%s status=%s progress=%.0f%%\n",
				info.ID, info.Class, info.Priority, info.Status, info.Progress*100)
			if info.Err != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", info.Err)
			}
			return nil
		},
	}
	return cmd
}

func newCancelCmd(cfg *CLIConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Cancel a queued task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			c := NewClient(cfg.ServerURL, cfg.Timeout)
			if err := c.Cancel(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d cancelled\n", id)
			return nil
		},
	}
	return cmd
}

func newStatsCmd(cfg *CLIConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-class scheduler stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewClient(cfg.ServerURL, cfg.Timeout)
			snap, err := c.Stats()
			if err != nil {
				return err
			}
			if cfg.JSON {
				return json.NewEncoder(os.Stdout).Encode(snap)
			}
			for class, s := range snap.Classes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s submitted=%-6d completed=%-6d failed=%-6d cancelled=%-6d queued=%-4d running=%-4d\n",
					class, s.Submitted, s.Completed, s.Failed, s.Cancelled, s.CurrentlyQueued, s.CurrentlyRun)
			}
			return nil
		},
	}
	return cmd
}

func parsePriority(s string) (types.Priority, error) {
	switch s {
	case "low":
		return types.PriorityLow, nil
	case "medium", "":
		return types.PriorityMedium, nil
	case "high":
		return types.PriorityHigh, nil
	default:
		return 0, fmt.Errorf("unknown priority %q: want low|medium|high", s)
	}
}

func parseTaskID(s string) (types.TaskID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", s, err)
	}
	return types.TaskID(n), nil
}

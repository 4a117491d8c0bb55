package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"urzis-pass/internal/api"
)

var ErrCommandTimeout = errors.New("timed out waiting for command result")

var commandPollInterval = time.Second

var commandWait time.Duration

var agentsCmd = &cobra.Command{
	Use:     "agents",
	Aliases: []string{"agent"},
	Short:   "Inspect terminal agents",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		agents, err := client.ListAgents(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), agents, func(w io.Writer) {
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tLAST SEEN")
			for _, a := range agents {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, orDash(a.Status), orDash(a.LastSeen))
			}
		})
	},
}

var commandsCmd = &cobra.Command{
	Use:     "commands",
	Aliases: []string{"command"},
	Short:   "Inspect dispatched terminal commands",
}

var commandsGetCmd = &cobra.Command{
	Use:   "get <command-id>",
	Short: "Show the result of a dispatched command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := api.ID(args[0])
		var (
			result *api.CommandResult
			err    error
		)
		if commandWait > 0 {
			result, err = waitForCommand(cmd.Context(), id, commandWait, commandPollInterval)
		} else {
			result, err = client.GetCommandResult(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		return printCommand(cmd.OutOrStdout(), result)
	},
}

// waitForCommand polls until the command leaves its pending state or wait runs out.
func waitForCommand(ctx context.Context, id api.ID, wait, interval time.Duration) (*api.CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := client.GetCommandResult(ctx, id)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, fmt.Errorf("%w %s", ErrCommandTimeout, id)
		case err != nil:
			return nil, err
		case !result.Pending():
			return result, nil
		}
		slog.Debug("Command pending", "command_id", id, "status", result.Status)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w %s", ErrCommandTimeout, id)
		case <-ticker.C:
		}
	}
}

func printCommand(w io.Writer, r *api.CommandResult) error {
	return render(w, r, func(w io.Writer) {
		fmt.Fprintf(w, "Command:\t%s\n", r.ID)
		fmt.Fprintf(w, "Status:\t%s\n", orDash(r.Status))
		if r.Success != nil {
			fmt.Fprintf(w, "Success:\t%s\n", yesNo(*r.Success))
		}
		if r.Message != "" {
			fmt.Fprintf(w, "Message:\t%s\n", r.Message)
		}
		if r.CompletedAt != "" {
			fmt.Fprintf(w, "Completed:\t%s\n", r.CompletedAt)
		}
	})
}

func init() {
	commandsGetCmd.Flags().DurationVar(&commandWait, "wait", 0, "poll until the command completes, up to this long")

	agentsCmd.AddCommand(agentsListCmd)
	commandsCmd.AddCommand(commandsGetCmd)
	rootCmd.AddCommand(agentsCmd, commandsCmd)
}

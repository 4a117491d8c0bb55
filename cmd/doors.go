package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"urzis-pass/internal/api"
)

var ErrDoorQuotaReached = errors.New("door quota reached")

var (
	doorName  string
	doorIP    string
	doorPort  int
	doorDelay int
	doorAgent string

	openDelay int
	doorWait  time.Duration
)

var doorsCmd = &cobra.Command{
	Use:     "doors",
	Aliases: []string{"door"},
	Short:   "Manage and control doors",
}

var doorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List doors",
	RunE: func(cmd *cobra.Command, args []string) error {
		doors, err := client.ListDoors(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), doors, func(w io.Writer) {
			fmt.Fprintln(w, "ID\tNAME\tTERMINAL\tDELAY (ms)\tAGENT")
			for _, d := range doors {
				fmt.Fprintf(w, "%s\t%s\t%s:%d\t%d\t%s\n", d.ID, d.Name, d.TerminalIP, d.TerminalPort, d.DefaultDelay, orDash(d.AgentID.String()))
			}
		})
	},
}

var doorsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a door",
	Long:  `Create a door. The door quota is checked first and creation is refused when nothing remains.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		quota, err := client.GetDoorQuota(ctx)
		if err != nil {
			return err
		}
		if err := checkQuota(quota); err != nil {
			return err
		}

		door, err := client.CreateDoor(ctx, doorInput())
		if err != nil {
			return err
		}
		return printDoor(cmd.OutOrStdout(), door)
	},
}

var doorsUpdateCmd = &cobra.Command{
	Use:   "update <door-id>",
	Short: "Update a door",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := api.ID(args[0])

		// Start from the current door so unset flags keep their values
		doors, err := client.ListDoors(ctx)
		if err != nil {
			return err
		}
		var input *api.DoorInput
		for _, d := range doors {
			if d.ID == id {
				input = &api.DoorInput{Name: d.Name, TerminalIP: d.TerminalIP, TerminalPort: d.TerminalPort, DefaultDelay: d.DefaultDelay, AgentID: d.AgentID}
				break
			}
		}
		if input == nil {
			return fmt.Errorf("door %s not found", id)
		}

		flags := cmd.Flags()
		if flags.Changed("name") {
			input.Name = doorName
		}
		if flags.Changed("ip") {
			input.TerminalIP = doorIP
		}
		if flags.Changed("port") {
			input.TerminalPort = doorPort
		}
		if flags.Changed("delay") {
			input.DefaultDelay = doorDelay
		}
		if flags.Changed("agent") {
			input.AgentID = api.ID(doorAgent)
		}

		door, err := client.UpdateDoor(ctx, id, *input)
		if err != nil {
			return err
		}
		return printDoor(cmd.OutOrStdout(), door)
	},
}

var doorsDeleteCmd = &cobra.Command{
	Use:   "delete <door-id>",
	Short: "Delete a door",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.DeleteDoor(cmd.Context(), api.ID(args[0])); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Door %s deleted\n", args[0])
		return nil
	},
}

var doorsOpenCmd = &cobra.Command{
	Use:   "open <door-id>",
	Short: "Open a door",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := client.OpenDoor(cmd.Context(), api.ID(args[0]), openDelay)
		if err != nil {
			return err
		}
		return printAction(cmd, action)
	},
}

var doorsCloseCmd = &cobra.Command{
	Use:   "close <door-id>",
	Short: "Close a door",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action, err := client.CloseDoor(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		return printAction(cmd, action)
	},
}

var doorsStatusCmd = &cobra.Command{
	Use:   "status <door-id>",
	Short: "Show the live status of a door",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := client.GetDoorStatus(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), status, func(w io.Writer) {
			fmt.Fprintf(w, "Door:\t%s\n", status.DoorID)
			fmt.Fprintf(w, "Status:\t%s\n", orDash(status.Status))
			fmt.Fprintf(w, "Open:\t%s\n", yesNo(status.IsOpen))
			fmt.Fprintf(w, "Online:\t%s\n", yesNo(status.Online))
			if status.UpdatedAt != "" {
				fmt.Fprintf(w, "Updated:\t%s\n", status.UpdatedAt)
			}
		})
	},
}

func doorInput() api.DoorInput {
	return api.DoorInput{
		Name:         doorName,
		TerminalIP:   doorIP,
		TerminalPort: doorPort,
		DefaultDelay: doorDelay,
		AgentID:      api.ID(doorAgent),
	}
}

// checkQuota refuses a create when the quota is exhausted.
func checkQuota(q *api.Quota) error {
	if q.Remaining <= 0 {
		return fmt.Errorf("%w: %d of %d in use", ErrDoorQuotaReached, q.Used, q.Quota)
	}
	return nil
}

func printDoor(w io.Writer, d *api.Door) error {
	return render(w, d, func(w io.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", d.ID)
		fmt.Fprintf(w, "Name:\t%s\n", d.Name)
		fmt.Fprintf(w, "Terminal:\t%s:%d\n", d.TerminalIP, d.TerminalPort)
		fmt.Fprintf(w, "Delay (ms):\t%d\n", d.DefaultDelay)
		fmt.Fprintf(w, "Agent:\t%s\n", orDash(d.AgentID.String()))
	})
}

// printAction reports the acknowledgement, following the dispatched command when --wait is set.
func printAction(cmd *cobra.Command, action *api.DoorAction) error {
	out := cmd.OutOrStdout()
	if doorWait > 0 && action.CommandID != "" {
		result, err := waitForCommand(cmd.Context(), action.CommandID, doorWait, commandPollInterval)
		if err != nil {
			return err
		}
		return printCommand(out, result)
	}

	return render(out, action, func(w io.Writer) {
		fmt.Fprintf(w, "Success:\t%s\n", yesNo(action.Success))
		if action.Message != "" {
			fmt.Fprintf(w, "Message:\t%s\n", action.Message)
		}
		if action.CommandID != "" {
			fmt.Fprintf(w, "Command:\t%s\n", action.CommandID)
		}
		if action.Status != "" {
			fmt.Fprintf(w, "Status:\t%s\n", action.Status)
		}
	})
}

func init() {
	for _, c := range []*cobra.Command{doorsCreateCmd, doorsUpdateCmd} {
		c.Flags().StringVar(&doorName, "name", "", "door name")
		c.Flags().StringVar(&doorIP, "ip", "", "terminal IP address")
		c.Flags().IntVar(&doorPort, "port", 0, "terminal port")
		c.Flags().IntVar(&doorDelay, "delay", 0, "default open delay in milliseconds")
		c.Flags().StringVar(&doorAgent, "agent", "", "agent that relays commands to the terminal")
	}
	doorsCreateCmd.MarkFlagRequired("name")
	doorsCreateCmd.MarkFlagRequired("ip")
	doorsCreateCmd.MarkFlagRequired("port")

	doorsOpenCmd.Flags().IntVar(&openDelay, "delay", 0, "open delay in milliseconds (door default when 0)")
	for _, c := range []*cobra.Command{doorsOpenCmd, doorsCloseCmd} {
		c.Flags().DurationVar(&doorWait, "wait", 0, "wait up to this long for the terminal to report back")
	}

	doorsCmd.AddCommand(doorsListCmd, doorsCreateCmd, doorsUpdateCmd, doorsDeleteCmd, doorsOpenCmd, doorsCloseCmd, doorsStatusCmd)
	rootCmd.AddCommand(doorsCmd)
}

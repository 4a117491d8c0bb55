package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"urzis-pass/internal/api"
)

var (
	eventsDoor  string
	eventsLimit int

	notifyOpen   bool
	notifyClose  bool
	notifyForced bool
	notifyCodes  string
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"event"},
	Short:   "Read the door event log",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := client.ListEvents(cmd.Context(), api.EventFilter{DoorID: api.ID(eventsDoor), Limit: eventsLimit})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), events, func(w io.Writer) {
			if len(events) == 0 {
				fmt.Fprintln(w, "No events")
				return
			}
			fmt.Fprintln(w, "TIME\tDOOR\tEVENT\tSOURCE")
			for _, e := range events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", orDash(e.Time()), orDash(e.DoorName), e.EventType, orDash(e.Source))
			}
		})
	},
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notify"},
	Short:   "Manage per-door notification preferences",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notification preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := client.GetNotificationPreferences(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), prefs, func(w io.Writer) {
			fmt.Fprintln(w, "DOOR\tNAME\tOPEN\tCLOSE\tFORCED\tCODES")
			for _, p := range prefs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.DoorID, orDash(p.DoorName),
					yesNo(p.NotifyOnOpen), yesNo(p.NotifyOnClose), yesNo(p.NotifyOnForced), orDash(p.EventCodes))
			}
		})
	},
}

var notificationsSetCmd = &cobra.Command{
	Use:   "set <door-id>",
	Short: "Set notification preferences for a door",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pref := api.NotificationPreference{
			DoorID:         api.ID(args[0]),
			NotifyOnOpen:   notifyOpen,
			NotifyOnClose:  notifyClose,
			NotifyOnForced: notifyForced,
			EventCodes:     notifyCodes,
		}
		if err := client.SetNotificationPreference(cmd.Context(), pref); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Notification preferences saved for door %s\n", args[0])
		return nil
	},
}

func init() {
	eventsListCmd.Flags().StringVar(&eventsDoor, "door", "", "only events of this door")
	eventsListCmd.Flags().IntVar(&eventsLimit, "limit", api.DefaultEventLimit, "maximum number of events")

	notificationsSetCmd.Flags().BoolVar(&notifyOpen, "open", false, "notify when the door opens")
	notificationsSetCmd.Flags().BoolVar(&notifyClose, "close", false, "notify when the door closes")
	notificationsSetCmd.Flags().BoolVar(&notifyForced, "forced", false, "notify when the door is forced")
	notificationsSetCmd.Flags().StringVar(&notifyCodes, "codes", "", "comma separated terminal event codes")

	eventsCmd.AddCommand(eventsListCmd)
	notificationsCmd.AddCommand(notificationsListCmd, notificationsSetCmd)
	rootCmd.AddCommand(eventsCmd, notificationsCmd)
}

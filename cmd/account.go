package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	profileFirstName string
	profileLastName  string
)

type quotaView struct {
	Doors any `json:"doors" yaml:"doors"`
	Users any `json:"users" yaml:"users"`
}

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show door and user quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		doors, err := client.GetDoorQuota(ctx)
		if err != nil {
			return err
		}
		users, err := client.GetUserQuota(ctx)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), quotaView{Doors: doors, Users: users}, func(w io.Writer) {
			fmt.Fprintln(w, "\tUSED\tQUOTA\tREMAINING")
			fmt.Fprintf(w, "Doors\t%d\t%d\t%d\n", doors.Used, doors.Quota, doors.Remaining)
			fmt.Fprintf(w, "Users\t%d\t%d\t%d\n", users.Used, users.Quota, users.Remaining)
		})
	},
}

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Show the tenant license",
	RunE: func(cmd *cobra.Command, args []string) error {
		lic, err := client.GetLicenseStatus(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), lic, func(w io.Writer) {
			fmt.Fprintf(w, "Valid:\t%s\n", yesNo(lic.Valid))
			fmt.Fprintf(w, "Status:\t%s\n", orDash(lic.Status))
			fmt.Fprintf(w, "Expires:\t%s\n", orDash(lic.ExpiresAt))
			if lic.DaysRemaining > 0 {
				fmt.Fprintf(w, "Days remaining:\t%d\n", lic.DaysRemaining)
			}
			if lic.Message != "" {
				fmt.Fprintf(w, "Message:\t%s\n", lic.Message)
			}
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or change your own account",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := client.GetProfile(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), p, func(w io.Writer) {
			fmt.Fprintf(w, "Email:\t%s\n", p.Email)
			fmt.Fprintf(w, "Name:\t%s\n", fullName(p.FirstName, p.LastName))
			fmt.Fprintf(w, "Admin:\t%s\n", yesNo(p.IsAdmin))
			fmt.Fprintf(w, "Tenant:\t%s\n", orDash(p.Tenant))
		})
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your name",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		first, last := profileFirstName, profileLastName
		if !cmd.Flags().Changed("first-name") || !cmd.Flags().Changed("last-name") {
			p, err := client.GetProfile(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("first-name") {
				first = p.FirstName
			}
			if !cmd.Flags().Changed("last-name") {
				last = p.LastName
			}
		}
		if err := client.UpdateProfile(ctx, first, last); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Profile updated\n")
		return nil
	},
}

var profilePasswordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := cmd.ErrOrStderr()
		current, err := readPassword(prompt, "Current password: ")
		if err != nil {
			return err
		}
		next, err := readPassword(prompt, "New password: ")
		if err != nil {
			return err
		}
		if next == "" {
			return fmt.Errorf("new password must not be empty")
		}
		if err := client.ChangePassword(cmd.Context(), current, next); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Password changed\n")
		return nil
	},
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileFirstName, "first-name", "", "first name")
	profileUpdateCmd.Flags().StringVar(&profileLastName, "last-name", "", "last name")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profilePasswordCmd)
	rootCmd.AddCommand(quotaCmd, licenseCmd, profileCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"urzis-pass/internal/access"
	"urzis-pass/internal/api"
)

var ErrUserQuotaExceeded = errors.New("user quota exceeded")

var (
	userEmail     string
	userFirstName string
	userLastName  string
	userAdmin     bool
	userPassword  string
	userPrompt    bool

	permissionGrants []string
	importDryRun     bool
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage tenant users and their door permissions",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), users, func(w io.Writer) {
			if len(users) == 0 {
				fmt.Fprintln(w, "No users found")
				return
			}
			fmt.Fprintln(w, "ID\tEMAIL\tNAME\tADMIN")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, fullName(u.FirstName, u.LastName), yesNo(u.IsAdmin))
			}
		})
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := access.ValidEmail(userEmail); err != nil {
			return fmt.Errorf("%w: %q", err, userEmail)
		}
		input := api.UserInput{
			Email:     userEmail,
			Password:  userPassword,
			FirstName: userFirstName,
			LastName:  userLastName,
			IsAdmin:   userAdmin,
		}
		if userPrompt && input.Password == "" {
			var err error
			if input.Password, err = readPassword(cmd.ErrOrStderr(), "Password for new user: "); err != nil {
				return err
			}
		}

		user, err := client.CreateUser(cmd.Context(), input)
		if err != nil {
			return err
		}
		return printUser(cmd.OutOrStdout(), user)
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id := api.ID(args[0])

		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}
		var input *api.UserInput
		for _, u := range users {
			if u.ID == id {
				input = &api.UserInput{Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, IsAdmin: u.IsAdmin}
				break
			}
		}
		if input == nil {
			return fmt.Errorf("user %s not found", id)
		}

		flags := cmd.Flags()
		if flags.Changed("email") {
			if err := access.ValidEmail(userEmail); err != nil {
				return fmt.Errorf("%w: %q", err, userEmail)
			}
			input.Email = userEmail
		}
		if flags.Changed("first-name") {
			input.FirstName = userFirstName
		}
		if flags.Changed("last-name") {
			input.LastName = userLastName
		}
		if flags.Changed("admin") {
			input.IsAdmin = userAdmin
		}
		input.Password = userPassword

		user, err := client.UpdateUser(ctx, id, *input)
		if err != nil {
			return err
		}
		return printUser(cmd.OutOrStdout(), user)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.DeleteUser(cmd.Context(), api.ID(args[0])); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "User %s deleted\n", args[0])
		return nil
	},
}

var permissionsCmd = &cobra.Command{
	Use:     "permissions",
	Aliases: []string{"perms"},
	Short:   "Show or replace a user's door permissions",
}

var permissionsGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show a user's door permissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		perms, err := client.GetUserPermissions(cmd.Context(), api.ID(args[0]))
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), perms, func(w io.Writer) {
			fmt.Fprintln(w, "DOOR\tNAME\tOPEN\tCLOSE\tSTATUS")
			for _, p := range perms {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.DoorID, orDash(p.DoorName), yesNo(p.CanOpen), yesNo(p.CanClose), yesNo(p.CanViewStatus))
			}
		})
	},
}

var permissionsSetCmd = &cobra.Command{
	Use:   "set <user-id>",
	Short: "Replace a user's door permissions",
	Long: `Replace the full permission set of a user. Each --grant names a door and
its rights, for example --grant 3=open,close,status. Doors not listed lose access.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		perms := make([]api.Permission, 0, len(permissionGrants))
		for _, g := range permissionGrants {
			p, err := parseGrant(g)
			if err != nil {
				return err
			}
			perms = append(perms, p)
		}
		if err := client.SetUserPermissions(cmd.Context(), api.ID(args[0]), perms); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Permissions updated for user %s (%d doors)\n", args[0], len(api.GrantedPermissions(perms)))
		return nil
	},
}

var usersImportCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Create users from a CSV export",
	Long: `Create users from a CSV file. The delimiter and header language are detected;
rows with an invalid email are skipped. The user quota is checked before anything is created.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		records, err := access.ReadUserListFile(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			printf(out, "No users to import\n")
			return nil
		}

		quota, err := client.GetUserQuota(ctx)
		if err != nil {
			return err
		}
		if len(records) > quota.Remaining {
			return fmt.Errorf("%w: importing %d users, %d remaining", ErrUserQuotaExceeded, len(records), quota.Remaining)
		}

		if importDryRun {
			for _, r := range records {
				printf(out, "Would create %s\n", r.User.Email)
			}
			return nil
		}

		created := 0
		for _, r := range records {
			if _, err := client.CreateUser(ctx, r.User); err != nil {
				// Session level failures stop the import, row failures do not
				if k := api.KindOf(err); k != api.KindServer {
					return err
				}
				slog.Warn("Failed to create user", "line", r.Line, "email", r.User.Email, "error", err)
				printf(out, "Line %d: %s: %v\n", r.Line, r.User.Email, err)
				continue
			}
			created++
		}
		printf(out, "Created %d of %d users\n", created, len(records))
		return nil
	},
}

// parseGrant reads "DOOR=open,close,status". A bare door id grants all rights.
func parseGrant(s string) (api.Permission, error) {
	door, rights, found := strings.Cut(s, "=")
	door = strings.TrimSpace(door)
	if door == "" {
		return api.Permission{}, fmt.Errorf("invalid grant %q: missing door id", s)
	}
	p := api.Permission{DoorID: api.ID(door)}
	if !found {
		p.CanOpen, p.CanClose, p.CanViewStatus = true, true, true
		return p, nil
	}

	for _, r := range strings.Split(rights, ",") {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "open":
			p.CanOpen = true
		case "close":
			p.CanClose = true
		case "status", "view":
			p.CanViewStatus = true
		case "", "none":
		default:
			return api.Permission{}, fmt.Errorf("invalid grant %q: unknown right %q", s, r)
		}
	}
	return p, nil
}

func fullName(first, last string) string {
	return orDash(strings.TrimSpace(first + " " + last))
}

func printUser(w io.Writer, u *api.User) error {
	return render(w, u, func(w io.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", u.ID)
		fmt.Fprintf(w, "Email:\t%s\n", u.Email)
		fmt.Fprintf(w, "Name:\t%s\n", fullName(u.FirstName, u.LastName))
		fmt.Fprintf(w, "Admin:\t%s\n", yesNo(u.IsAdmin))
	})
}

func init() {
	for _, c := range []*cobra.Command{usersCreateCmd, usersUpdateCmd} {
		c.Flags().StringVar(&userEmail, "email", "", "email address")
		c.Flags().StringVar(&userFirstName, "first-name", "", "first name")
		c.Flags().StringVar(&userLastName, "last-name", "", "last name")
		c.Flags().BoolVar(&userAdmin, "admin", false, "grant tenant administrator rights")
		c.Flags().StringVar(&userPassword, "password", "", "initial password")
	}
	usersCreateCmd.Flags().BoolVar(&userPrompt, "prompt-password", false, "prompt for the initial password")
	usersCreateCmd.MarkFlagRequired("email")

	permissionsSetCmd.Flags().StringArrayVar(&permissionGrants, "grant", nil, "door grant as DOOR=open,close,status (repeatable)")
	usersImportCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and check quota without creating users")

	permissionsCmd.AddCommand(permissionsGetCmd, permissionsSetCmd)
	usersCmd.AddCommand(usersListCmd, usersCreateCmd, usersUpdateCmd, usersDeleteCmd, permissionsCmd, usersImportCmd)
	rootCmd.AddCommand(usersCmd)
}

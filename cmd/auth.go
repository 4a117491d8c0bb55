package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"urzis-pass/internal/access"
)

var (
	loginEmail    string
	loginTenant   string
	loginPassword string
	loginServer   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a tenant",
	Long:  `Sign in with email and password. The password is prompted for when not given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if loginServer != "" {
			if err := client.SetServerURL(ctx, loginServer); err != nil {
				return err
			}
		}
		if err := access.ValidEmail(loginEmail); err != nil {
			return fmt.Errorf("%w: %q", err, loginEmail)
		}
		if loginTenant == "" {
			return fmt.Errorf("tenant is required")
		}

		password := loginPassword
		if password == "" {
			var err error
			password, err = readPassword(cmd.ErrOrStderr(), "Password: ")
			if err != nil {
				return err
			}
		}

		if _, err := client.Login(ctx, loginEmail, password, loginTenant); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Logged in to %s as %s\n", loginTenant, loginEmail)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Logout(cmd.Context()); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Logged out\n")
		return nil
	},
}

type statusView struct {
	Server        string `json:"server" yaml:"server"`
	Tenant        string `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	TokenExpires  string `json:"token_expires,omitempty" yaml:"token_expires,omitempty"`
	License       string `json:"license,omitempty" yaml:"license,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sess := client.Session(ctx)
		view := statusView{
			Server:        sess.ServerURL,
			Tenant:        sess.Tenant,
			Authenticated: sess.Authenticated(),
		}
		if exp, err := sess.TokenExpiry(); err == nil {
			view.TokenExpires = exp.Local().Format(time.RFC3339)
		}
		if sess.Authenticated() {
			// A failure here may clear an expired session; report it inline.
			lic, err := client.GetLicenseStatus(ctx)
			switch {
			case err != nil:
				view.License = err.Error()
				view.Authenticated = client.Session(ctx).Authenticated()
			case lic.Valid:
				view.License = "valid"
				if lic.ExpiresAt != "" {
					view.License += " until " + lic.ExpiresAt
				}
			default:
				view.License = orDash(lic.Status)
			}
		}

		return render(cmd.OutOrStdout(), view, func(w io.Writer) {
			fmt.Fprintf(w, "Server:\t%s\n", orDash(view.Server))
			fmt.Fprintf(w, "Tenant:\t%s\n", orDash(view.Tenant))
			fmt.Fprintf(w, "Logged in:\t%s\n", yesNo(view.Authenticated))
			if view.TokenExpires != "" {
				fmt.Fprintf(w, "Token expires:\t%s\n", view.TokenExpires)
			}
			if view.License != "" {
				fmt.Fprintf(w, "License:\t%s\n", view.License)
			}
		})
	},
}

// readPassword prompts on a terminal, or reads one line when stdin is piped.
func readPassword(prompt io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, label)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginTenant, "tenant", "t", "", "tenant identifier")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginServer, "server", "", "set the server URL before signing in")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("tenant")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

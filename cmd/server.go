package cmd

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Configure the URZIS PASS server",
}

var serverSetCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Set the server base URL",
	Long:  `Set the server base URL. A missing scheme defaults to http://. The stored login is kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.SetServerURL(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to save server URL: %w", err)
		}
		printf(cmd.OutOrStdout(), "Server set to %s\n", client.Session(cmd.Context()).ServerURL)
		return nil
	},
}

var serverShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := client.Session(cmd.Context())
		if !sess.Configured() {
			return fmt.Errorf("server URL not configured")
		}
		printf(cmd.OutOrStdout(), "%s\n", sess.ServerURL)
		return nil
	},
}

var serverShareCmd = &cobra.Command{
	Use:   "share",
	Short: "Print the server URL as a QR code",
	Long:  `Print the configured server URL as a terminal QR code so a phone can pick it up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sess := client.Session(cmd.Context())
		if !sess.Configured() {
			return fmt.Errorf("server URL not configured")
		}
		qr, err := qrcode.New(sess.ServerURL, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("failed to generate QR code: %w", err)
		}
		printf(cmd.OutOrStdout(), "%s\n%s\n", qr.ToSmallString(false), sess.ServerURL)
		return nil
	},
}

func init() {
	serverCmd.AddCommand(serverSetCmd)
	serverCmd.AddCommand(serverShowCmd)
	serverCmd.AddCommand(serverShareCmd)
	rootCmd.AddCommand(serverCmd)
}

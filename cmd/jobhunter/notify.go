package main

import (
	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a sample job through the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	if err := notifier.SendTestMessage(a.notifier()); err != nil {
		a.logger.Error("test notification failed", "error", err)
		return err
	}
	a.logger.Info("test notification sent successfully")
	return nil
}

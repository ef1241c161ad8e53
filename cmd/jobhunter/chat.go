package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	Long:  "Opens the terminal chat. Type job criteria such as \"Software Engineer, San Francisco, CA, Senior\" to run a search.",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := setup(true)
	if err != nil {
		return err
	}
	defer a.close()

	repo, closeRepo, err := a.repository(context.Background())
	if err != nil {
		return err
	}
	defer closeRepo()

	session := a.session(a.crew(a.searcher(nil), repo))
	return tui.Run(session)
}

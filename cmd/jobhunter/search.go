package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/chat"
)

var (
	searchPerPage int
	searchSort    string
	searchResume  string
)

var searchCmd = &cobra.Command{
	Use:   "search CRITERIA",
	Short: "Run one search and print the results",
	Long: `Runs the full crew once for the given criteria and prints the results as a Markdown table.

Example:
  jobhunter search "Software Engineer, San Francisco, CA, Senior" --sort "posted desc"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchPerPage, "per-page", 0, "jobs per page (default: chat.jobs_per_page)")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", `sort field and optional direction, e.g. "company" or "posted desc"`)
	searchCmd.Flags().StringVar(&searchResume, "resume", "", "resume to tailor (default: resume.path)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := a.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	session := a.session(a.crew(a.searcher(nil), repo))
	out := cmd.OutOrStdout()
	var failed bool
	emit := func(r chat.Reply) {
		if r.Kind == chat.KindError {
			failed = true
		}
		fmt.Fprintln(out, r.Text)
	}

	// Options are applied as chat commands so they are validated the same way.
	var setupCmds []string
	if searchPerPage != 0 {
		setupCmds = append(setupCmds, fmt.Sprintf("jobs per page: %d", searchPerPage))
	}
	if searchSort != "" {
		setupCmds = append(setupCmds, "sort by "+searchSort)
	}
	if searchResume != "" {
		setupCmds = append(setupCmds, "resume: "+searchResume)
	}
	for _, c := range setupCmds {
		for _, r := range session.Handle(ctx, c) {
			if r.Kind == chat.KindError {
				return fmt.Errorf("%s: %s", c, r.Text)
			}
		}
	}

	session.HandleStream(ctx, strings.Join(args, " "), emit)
	if failed {
		return fmt.Errorf("search did not complete")
	}
	return nil
}

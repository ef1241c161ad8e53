package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/chat"
	"github.com/amishk599/jobhunter/internal/tui"
)

var (
	jobsLimit   int
	jobsSort    string
	jobsPick    bool
	jobsDetails bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List saved jobs",
	Long:  "Prints the most recently saved jobs as a Markdown table, or opens an interactive picker with --pick.",
	RunE:  runJobs,
}

func init() {
	jobsCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 25, "number of jobs to list")
	jobsCmd.Flags().StringVar(&jobsSort, "sort", "", `sort field and optional direction, e.g. "company" or "posted desc"`)
	jobsCmd.Flags().BoolVar(&jobsPick, "pick", false, "choose a job interactively and open it in the browser")
	jobsCmd.Flags().BoolVar(&jobsDetails, "details", false, "also list tailored resumes and referral contacts")
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	a, err := setup(jobsPick)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	repo, closeRepo, err := a.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	jobs, err := repo.ListJobs(ctx, jobsLimit)
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if jobsSort != "" {
		fields := strings.Fields(jobsSort)
		field, err := chat.ParseSortField(fields[0])
		if err != nil {
			return err
		}
		desc := len(fields) > 1 && strings.HasPrefix(strings.ToLower(fields[1]), "desc")
		jobs = chat.SortJobs(jobs, field, desc)
	}

	out := cmd.OutOrStdout()
	if !jobsPick {
		fmt.Fprintln(out, chat.RenderTable(jobs, 1, max(len(jobs), 1)))
		if !jobsDetails {
			return nil
		}
		for _, j := range jobs {
			resumes, err := repo.ListResumes(ctx, j.ID)
			if err != nil {
				return fmt.Errorf("list resumes for job %d: %w", j.ID, err)
			}
			refs, err := repo.ListReferrals(ctx, j.ID)
			if err != nil {
				return fmt.Errorf("list referrals for job %d: %w", j.ID, err)
			}
			if len(resumes) == 0 && len(refs) == 0 {
				continue
			}
			fmt.Fprintf(out, "\n## %s at %s\n", j.Title, j.Company)
			for _, r := range resumes {
				fmt.Fprintf(out, "- Resume: %s (%s)\n", r.OptimizedPath, r.Notes)
			}
			if len(refs) > 0 {
				fmt.Fprintln(out, chat.RenderReferrals(refs))
			}
		}
		return nil
	}

	idx, err := tui.RunJobPicker(jobs)
	if err != nil {
		return err
	}
	if idx < 0 {
		return nil
	}
	job := jobs[idx]
	fmt.Fprintf(out, "Opening %s\n", job.URL)
	return tui.OpenURL(job.URL)
}

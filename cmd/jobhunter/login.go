package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobhunter/internal/linkedin"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to LinkedIn and save the cookie session",
	Long:  "Opens Chrome on the LinkedIn login page. Log in, then press Enter here; the cookies are saved to browser.cookies_file.",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	res, err := linkedin.Login(ctx, a.cfg.Search.BaseURL, a.browserOptions(), waitForEnter(os.Stdin, out))
	if err != nil {
		a.logger.Error("login failed", "error", err)
		return err
	}
	fmt.Fprintf(out, "Saved %d cookies to %s\n", res.Cookies, a.cfg.Browser.CookiesFile)
	if !res.Verified {
		fmt.Fprintf(out, "Warning: the session could not be verified (landed on %s). Referral search may not work.\n", res.FinalURL)
	}
	return nil
}

// waitForEnter blocks until a line is read from in or ctx is done.
func waitForEnter(in io.Reader, out io.Writer) func(context.Context) error {
	return func(ctx context.Context) error {
		fmt.Fprintln(out, "Log in to LinkedIn in the browser window, then press Enter here...")
		done := make(chan error, 1)
		go func() {
			_, err := bufio.NewReader(in).ReadString('\n')
			done <- err
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			if err != nil && err != io.EOF {
				return fmt.Errorf("read stdin: %w", err)
			}
			return nil
		}
	}
}

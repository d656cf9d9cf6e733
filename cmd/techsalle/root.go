package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/techsalle/inventory/client"
	"github.com/techsalle/inventory/ui"
)

const defaultAPIURL = "http://localhost:5000"

type cli struct {
	in      *bufio.Reader
	out     io.Writer
	apiURL  string
	timeout time.Duration
	yes     bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{in: bufio.NewReader(stdin), out: stdout}

	apiURL := os.Getenv("TECHSALLE_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	root := &cobra.Command{
		Use:           "techsalle",
		Short:         "Manage the TechSalle product inventory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", apiURL, "inventory API base URL (env TECHSALLE_API_URL)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "per-request timeout")
	root.PersistentFlags().BoolVarP(&c.yes, "yes", "y", false, "do not ask for confirmation before deleting")

	root.AddCommand(c.productsCmd(), c.categoriesCmd(), c.statsCmd())
	return root
}

// noticeText words API and form failures the way the screens do; anything
// else, such as a bad flag, is printed as is.
func noticeText(err error) string {
	var apiErr *client.Error
	var formErr *ui.FormError
	if errors.As(err, &apiErr) || errors.As(err, &formErr) {
		return ui.NoticeFor(err).Text
	}
	return err.Error()
}

func (c *cli) client() *client.Client {
	return client.New(c.apiURL, client.WithTimeout(c.timeout))
}

func (c *cli) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout*3)
}

// confirm reads a yes/no answer from stdin unless --yes was given.
func (c *cli) confirm(prompt string) bool {
	if c.yes {
		return true
	}
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, _ := c.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (c *cli) printNotice(n *ui.Notice) {
	if n != nil && n.Kind == ui.NoticeSuccess {
		fmt.Fprintln(c.out, n.Text)
	}
}

func parseIDArg(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

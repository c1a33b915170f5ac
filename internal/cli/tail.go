package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
)

// addEventFlags registers the event output flags on cmd.
func addEventFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	cmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	cmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
}

// newEventFormatter builds a formatter from the event output flags.
func newEventFormatter() *tail.Formatter {
	return tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
		tail.WithJSON(JSONOutput()),
	)
}

// printEvent writes one formatted event line to stdout.
func printEvent(f *tail.Formatter, e tail.Event) {
	fmt.Println(f.Format(e))
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/vibe/internal/tui/styles"
	"github.com/tessro/vibe/internal/vibe"
)

var vibesCmd = &cobra.Command{
	Use:   "vibes",
	Short: "List the vibes and their keywords",
	RunE:  runVibes,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <title> [description]",
	Short: "Show the vibes detected in a title and description",
	Long: `Show the vibes detected in a title and optional description.

Matching is a case-insensitive substring search for each vibe's keywords.

Examples:
  vibe classify "Smooth jazz piano"
  vibe classify "Rainy day" "lofi beats to study to"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(vibesCmd)
	rootCmd.AddCommand(classifyCmd)
}

func runVibes(cmd *cobra.Command, args []string) error {
	defs := vibe.Definitions()

	if JSONOutput() {
		type vibeJSON struct {
			Name     string   `json:"name"`
			Label    string   `json:"label"`
			Keywords []string `json:"keywords"`
			Color    string   `json:"color"`
		}
		out := make([]vibeJSON, len(defs))
		for i, d := range defs {
			out[i] = vibeJSON{Name: string(d.Name), Label: d.Label, Keywords: d.Keywords, Color: d.Color}
		}
		return printJSON(map[string]any{"vibes": out})
	}

	t := NewTable("VIBE", "LABEL", "KEYWORDS")
	for _, d := range defs {
		t.Row(styles.Badge(d.Name), d.Label, strings.Join(d.Keywords, ", "))
	}
	t.Flush()
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	title := args[0]
	var description string
	if len(args) > 1 {
		description = args[1]
	}

	vibes := vibe.Classify(title, description)

	if JSONOutput() {
		return printJSON(map[string]any{
			"title": title,
			"vibes": vibeStrings(vibes),
		})
	}

	if len(vibes) == 0 {
		fmt.Println("No vibes detected.")
		return nil
	}
	badges := make([]string, len(vibes))
	for i, v := range vibes {
		badges[i] = styles.Badge(v)
	}
	fmt.Println(strings.Join(badges, " "))
	return nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/pkg/credits"
	"github.com/matzehuels/coursemap/pkg/pipeline"
)

// creditsCommand creates the credits command.
func (c *CLI) creditsCommand() *cobra.Command {
	var deptID int

	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Show progress toward the graduation credit targets",
		Long: `Show the passed credits of the current student per bucket.

Each passed course counts toward exactly one of compulsory, elective or
general education, and once toward the total. By default every course in the
catalog is counted; --dept restricts the sum to one department's curriculum.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCredits(cmd.Context(), cmd.OutOrStdout(), deptID)
		},
	}

	cmd.Flags().IntVarP(&deptID, "dept", "d", pipeline.AllDepartments, "department id (default: whole catalog)")

	return cmd
}

func (c *CLI) runCredits(ctx context.Context, w io.Writer, deptID int) error {
	student, err := c.studentID()
	if err != nil {
		return err
	}
	runner, _, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if _, err := c.loadSnapshot(ctx, runner); err != nil {
		return err
	}
	sum, err := runner.Credits(ctx, student, deptID)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, creditsTable(sum))
	if sum.Total.Done() {
		printSuccess("Total credit target met")
	} else {
		printInfo("%d credits to go", sum.Total.Remaining())
	}
	return nil
}

// creditsTable renders a summary with one row per bucket and the total last.
func creditsTable(sum credits.Summary) string {
	buckets := []struct {
		name string
		b    credits.Bucket
	}{
		{credits.BucketCompulsory.String(), sum.Compulsory},
		{credits.BucketElective.String(), sum.Elective},
		{credits.BucketGeneral.String(), sum.General},
		{"total", sum.Total},
	}

	rows := make([][]string, len(buckets))
	for i, bk := range buckets {
		rows[i] = []string{bk.name, strconv.Itoa(bk.b.Current), strconv.Itoa(bk.b.Required), strconv.Itoa(bk.b.Remaining())}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("BUCKET", "PASSED", "REQUIRED", "REMAINING").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return style.Bold(true).Foreground(colorGray)
			case row >= len(buckets):
				return style
			case col == 0 && row == len(buckets)-1:
				return style.Bold(true)
			case col == 3 && buckets[row].b.Done():
				return style.Foreground(colorGreen)
			}
			return style
		}).
		Render()
}

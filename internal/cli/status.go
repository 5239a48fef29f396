package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/errors"
	"github.com/matzehuels/coursemap/pkg/gate"
	"github.com/matzehuels/coursemap/pkg/status"
)

// =============================================================================
// check
// =============================================================================

// checkCommand creates the check command, a dry run of a status change.
func (c *CLI) checkCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "check <course-id>",
		Short: "Check whether a course may be taken or passed",
		Long: `Check whether the current student may move a course to a status.

Moving a course to "ing" or "pass" requires every direct prerequisite to be
passed. The check never changes any record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := errors.ParseCourseID(args[0])
			if err != nil {
				return err
			}
			to, err := status.Parse(target)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidStatus, err, "check")
			}
			return c.runCheck(cmd.Context(), courseID, to)
		},
	}

	cmd.Flags().StringVar(&target, "to", status.CodePassed, "target status: ing, pass, fail, none")
	_ = cmd.RegisterFlagCompletionFunc("to", completeStatus)

	return cmd
}

func (c *CLI) runCheck(ctx context.Context, courseID int, to status.Status) error {
	student, err := c.studentID()
	if err != nil {
		return err
	}
	runner, _, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.DryRun(ctx, student, courseID, to)
	if err != nil {
		return err
	}
	printDecision(ctx, runner.Course, d)
	return nil
}

// courseLookup resolves a course id, as [pipeline.Runner.Course] does.
type courseLookup func(ctx context.Context, id int) (catalog.Course, error)

// printDecision reports a decided transition.
func printDecision(ctx context.Context, lookup courseLookup, d gate.Decision) {
	name := fmt.Sprintf("#%d", d.Course)
	if course, err := lookup(ctx, d.Course); err == nil {
		name += " " + course.Name
	}
	if d.Allowed {
		printSuccess("%s may move %s %s %s", name, renderStatus(d.From), iconArrow, renderStatus(d.To))
		return
	}
	printError("%s cannot move to %s: %d unmet prerequisite(s)", name, renderStatus(d.To), len(d.Violations))
	printViolations(d)
}

// =============================================================================
// status
// =============================================================================

// statusCommand creates the status command group.
func (c *CLI) statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Set or list course statuses of the current student",
	}

	cmd.AddCommand(c.statusSetCommand())
	cmd.AddCommand(c.statusListCommand())

	return cmd
}

// statusSetCommand creates the "status set" subcommand.
func (c *CLI) statusSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <course-id> <ing|pass|fail|none>",
		Short: "Change the status of a course",
		Long: `Change the status of a course for the current student.

The change is rejected when the target is "ing" or "pass" and a direct
prerequisite is not passed. "fail" and "none" are always accepted.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSetArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			courseID, err := errors.ParseCourseID(args[0])
			if err != nil {
				return err
			}
			to, err := status.Parse(args[1])
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidStatus, err, "set status")
			}
			return c.runSetStatus(cmd.Context(), courseID, to)
		},
	}
}

func (c *CLI) runSetStatus(ctx context.Context, courseID int, to status.Status) error {
	student, err := c.studentID()
	if err != nil {
		return err
	}
	runner, _, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	d, err := runner.SetStatus(ctx, student, courseID, to)
	if errors.Is(err, errors.ErrCodePrerequisitesUnmet) {
		printDecision(ctx, runner.Course, d)
		return err
	}
	if err != nil {
		return err
	}

	if d.From == d.To {
		printInfo("#%d is already %s", courseID, renderStatus(d.To))
		return nil
	}
	printSuccess("#%d %s %s %s", courseID, renderStatus(d.From), iconArrow, renderStatus(d.To))
	printDetail("Student: %s", student)
	return nil
}

// statusListCommand creates the "status list" subcommand.
func (c *CLI) statusListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the recorded statuses of the current student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runListStatus(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (c *CLI) runListStatus(ctx context.Context, w io.Writer) error {
	student, err := c.studentID()
	if err != nil {
		return err
	}
	runner, _, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := c.loadSnapshot(ctx, runner)
	if err != nil {
		return err
	}
	session, err := runner.Session(ctx, student)
	if err != nil {
		return err
	}

	records := session.Snapshot()
	if len(records) == 0 {
		printInfo("No statuses recorded for %s", student)
		return nil
	}

	ids := make([]int, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		name, level := "(not in catalog)", ""
		if course, ok := snap.Graph.Course(id); ok {
			name, level = course.Name, course.Level.Text()
		}
		rows = append(rows, []string{strconv.Itoa(id), name, level, records[id].Code()})
	}
	fmt.Fprintln(w, statusTable(rows))
	return nil
}

// statusTable renders course rows as a table.
func statusTable(rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "COURSE", "LEVEL", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return style.Bold(true).Foreground(colorCyan)
			}
			if col == 3 && row >= 0 && row < len(rows) {
				if st, err := status.Parse(rows[row][3]); err == nil {
					return style.Foreground(statusStyles[st].GetForeground())
				}
			}
			return style
		}).
		Render()
}

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/coursemap/pkg/catalog"
	"github.com/matzehuels/coursemap/pkg/credits"
	"github.com/matzehuels/coursemap/pkg/gate"
	"github.com/matzehuels/coursemap/pkg/status"
)

// planCommand creates the interactive plan command.
func (c *CLI) planCommand() *cobra.Command {
	var deptID int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan course statuses interactively",
		Long: `Open an interactive list of a department's courses in semester order.

Keys change the status of the selected course. Every change is checked
against the prerequisites and saved immediately; the credit totals are
updated after each accepted change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), deptID)
		},
	}

	cmd.Flags().IntVarP(&deptID, "dept", "d", 0, "department id")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, deptID int) error {
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
	res, err := runner.Layout(ctx, deptID)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	session, err := runner.Session(ctx, student)
	if err != nil {
		return err
	}
	summary, err := runner.Credits(ctx, student, deptID)
	if err != nil {
		return err
	}

	courses := make([]catalog.Course, 0, len(res.Nodes))
	for _, id := range res.CourseIDs() {
		if course, ok := snap.Graph.Course(id); ok {
			courses = append(courses, course)
		}
	}
	if len(courses) == 0 {
		printInfo("No courses in department %d", deptID)
		return nil
	}

	set := func(ctx context.Context, courseID int, to status.Status) (gate.Decision, credits.Summary, error) {
		d, err := runner.SetStatus(ctx, student, courseID, to)
		if err != nil {
			return d, credits.Summary{}, err
		}
		sum, err := runner.Credits(ctx, student, deptID)
		if err != nil {
			c.Logger.Warn("credits not refreshed", "err", err)
		}
		return d, sum, nil
	}

	model := NewPlanModel(ctx, courses, session.Snapshot(), summary, set)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/corhyn/internal/store"
	"github.com/sadopc/corhyn/internal/tracker"
	"github.com/sadopc/corhyn/internal/tui"
)

func (a *app) addCmd() *cobra.Command {
	var (
		draft       tui.TaskDraft
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Example: `  corhyn add "Write report" -p high --deadline 2026-03-10 -t work,writing
  corhyn add -i`,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			draft.Title = strings.Join(args, " ")
			if interactive {
				if err := tui.NewTaskForm(&draft).Run(); err != nil {
					return err
				}
			}
			nt := draft.NewTask()
			if nt.Title == "" {
				return fmt.Errorf("%w: title is required", tracker.ErrValidation)
			}
			if !store.ValidPriority(nt.Priority) {
				return fmt.Errorf("%w: priority must be low, medium or high", tracker.ErrValidation)
			}
			nt.CreatedAt = a.clock.Now()

			task, err := a.store.CreateTask(nt)
			if err != nil {
				return err
			}
			a.log.WithTaskID(task.ID).Info("task created")
			fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d: %s\n", task.ID, task.Title)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&draft.Priority, "priority", "p", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&draft.Deadline, "deadline", "", "Deadline (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&draft.Tags, "tags", "t", "", "Comma-separated tags")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the task with a form")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var f store.TaskFilter
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if f.Status != "" && !store.ValidStatus(f.Status) {
				return fmt.Errorf("%w: status must be pending or completed", tracker.ErrValidation)
			}
			if !store.ValidPriority(f.Priority) {
				return fmt.Errorf("%w: priority must be low, medium or high", tracker.ErrValidation)
			}
			tasks, err := a.store.ListTasks(f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			active := a.tracker.Current()
			rows := make([][]string, 0, len(tasks))
			for _, t := range tasks {
				status := t.Status
				if active != nil && active.TaskID == t.ID {
					status = "tracking"
				}
				rows = append(rows, []string{
					fmt.Sprint(t.ID), t.Title, orDash(t.Priority), orDash(t.Deadline), status, orDash(t.Tags),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Priority", "Deadline", "Status", "Tags"}, rows))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&f.Status, "status", "s", "", "Filter by status: pending or completed")
	cmd.Flags().StringVarP(&f.Priority, "priority", "p", "", "Filter by priority")
	cmd.Flags().StringVar(&f.Tag, "tag", "", "Only tasks carrying this tag")
	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags with task counts",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			tags, err := a.store.ListTags()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags yet.")
				return nil
			}
			rows := make([][]string, 0, len(tags))
			for _, tc := range tags {
				rows = append(rows, []string{tc.Name, fmt.Sprint(tc.Tasks), fmt.Sprint(tc.Pending)})
			}
			fmt.Fprintln(out, renderTable([]string{"Tag", "Tasks", "Pending"}, rows))
			return nil
		}),
	}
}

func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			if err := a.store.CompleteTask(id, a.clock.Now()); err != nil {
				return notFound(err, "task", id)
			}
			a.log.WithTaskID(id).Info("task completed")
			fmt.Fprintf(cmd.OutOrStdout(), "Completed task #%d: %s\n", id, a.taskTitle(&id))
			return nil
		}),
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task; its time entries are kept without a task",
		Args:    cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "task")
			if err != nil {
				return err
			}
			if cur := a.tracker.Current(); cur != nil && cur.TaskID == id {
				return fmt.Errorf("%w: task %d is being tracked; stop it first", tracker.ErrConflict, id)
			}
			if err := a.store.DeleteTask(id); err != nil {
				return notFound(err, "task", id)
			}
			a.log.WithTaskID(id).Info("task deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		}),
	}
}

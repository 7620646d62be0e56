package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskflow/client/domain"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and mutate tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(),
		newTasksCreateCmd(),
		newTasksUpdateCmd(),
		newTasksDeleteCmd(),
		newTasksAnalyzeCmd(),
	)
	return cmd
}

func newTasksListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tasks created by or assigned to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.tasks.Refresh(ctx); err != nil {
				return err
			}

			var tasks []domain.Task
			if all {
				tasks = a.tasks.All()
			} else {
				tasks, err = a.tasks.Visible(ctx)
				if err != nil {
					return err
				}
			}
			printTasks(tasks)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include tasks outside your view")
	return cmd
}

func newTasksCreateCmd() *cobra.Command {
	var (
		title, description string
		priority, status   string
		assignee           int64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.tasks.Refresh(ctx); err != nil {
				return err
			}

			session, err := a.sessions.Current(ctx)
			if err != nil {
				return err
			}

			input := domain.CreateTaskInput{
				Title:       title,
				Description: description,
				Priority:    domain.Priority(priority),
				Status:      domain.Status(status),
			}
			if assignee != 0 {
				user, err := a.tasks.Users(ctx)
				if err != nil {
					return err
				}
				for _, u := range user {
					if u.ID == assignee {
						input.AssignedTo = u.ID
						input.AssignedToName = u.DisplayName()
						break
					}
				}
				if input.AssignedTo == 0 {
					return fmt.Errorf("no user with id %d", assignee)
				}
			} else {
				input.AssignedTo = session.User.ID
				input.AssignedToName = session.User.DisplayName()
			}

			created, err := a.tasks.Create(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("created task %d: %s\n", created.ID, created.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&priority, "priority", string(domain.PriorityMedium), "High, Medium, or Low")
	cmd.Flags().StringVar(&status, "status", string(domain.StatusToDo), "ToDo, InProgress, or Done")
	cmd.Flags().Int64Var(&assignee, "assign", 0, "assignee user id (defaults to yourself)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd() *cobra.Command {
	var (
		title, description string
		priority, status   string
		assignee           int64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit task fields; only the flags you pass change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.tasks.Refresh(ctx); err != nil {
				return err
			}

			if cmd.Flags().Changed("assign") {
				updated, err := a.tasks.Reassign(ctx, id, assignee)
				if err != nil {
					return err
				}
				fmt.Printf("task %d assigned to %s\n", updated.ID, updated.AssignedToName)
			}

			patch := domain.TaskPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				p := domain.Priority(priority)
				patch.Priority = &p
			}
			if cmd.Flags().Changed("status") {
				s := domain.Status(status)
				patch.Status = &s
			}
			if patch.IsEmpty() {
				return nil
			}

			updated, err := a.tasks.Update(ctx, id, patch)
			if err != nil {
				return err
			}
			fmt.Printf("updated task %d: %s [%s/%s]\n", updated.ID, updated.Title, updated.Status, updated.Priority)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&priority, "priority", "", "new priority")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().Int64Var(&assignee, "assign", 0, "new assignee user id")
	return cmd
}

func newTasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.tasks.Refresh(ctx); err != nil {
				return err
			}
			if err := a.tasks.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("deleted task %d\n", id)
			return nil
		},
	}
}

func newTasksAnalyzeCmd() *cobra.Command {
	var context string
	var accept int

	cmd := &cobra.Command{
		Use:   "analyze <id>",
		Short: "Request the AI breakdown of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if err := a.tasks.Refresh(ctx); err != nil {
				return err
			}

			task, ok := a.sync.Get(id)
			if !ok {
				return fmt.Errorf("no task with id %d", id)
			}

			analysis, err := a.tasks.Analyze(ctx, id, domain.AnalyzeRequest{
				Description: task.Description,
				Context:     context,
			})
			if err != nil {
				return err
			}

			fmt.Printf("analysis for task %d:\n\n%s\n", id, analysis.Analysis)
			for i, s := range analysis.Suggestions {
				fmt.Printf("\n[%d] %s (%d sub-tasks)\n", i+1, s.SuggestionText, len(s.SubTasks))
				for _, sub := range s.SubTasks {
					fmt.Printf("    - %s [%s]\n", sub.Title, sub.Priority)
				}
			}

			if accept > 0 {
				if accept > len(analysis.Suggestions) {
					return fmt.Errorf("suggestion %d out of range (%d available)", accept, len(analysis.Suggestions))
				}
				created, err := a.tasks.AcceptSuggestion(ctx, analysis.Suggestions[accept-1])
				if err != nil {
					return err
				}
				fmt.Printf("\ncreated %d sub-tasks\n", len(created))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&context, "context", "", "extra context for the analysis")
	cmd.Flags().IntVar(&accept, "accept", 0, "accept suggestion N, creating its sub-tasks")
	return cmd
}

func printTasks(tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, t.AssignedToName)
	}
	_ = w.Flush()
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/taskr/internal/core"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, newest first",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a task's title or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Flip a task between done and pending",
	Args:  cobra.ExactArgs(1),
	RunE:  runToggle,
}

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runRm,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show completion statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	listCmd.Flags().Bool("done", false, "Only completed tasks")
	listCmd.Flags().Bool("pending", false, "Only pending tasks")
	listCmd.MarkFlagsMutuallyExclusive("done", "pending")

	addCmd.Flags().StringP("description", "d", "", "Task description")

	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// userError turns err into the text a user would see in the UI.
func userError(err error) error {
	if err == nil || errors.Is(err, core.ErrNotLoggedIn) {
		return err
	}
	return errors.New(core.Message(err))
}

func runList(cmd *cobra.Command, args []string) error {
	done, _ := cmd.Flags().GetBool("done")
	pending, _ := cmd.Flags().GetBool("pending")

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}

	var filter *bool
	switch {
	case done:
		filter = &done
	case pending:
		f := false
		filter = &f
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTasks(filterTasks(mgr.Tasks(), filter)))
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	desc, _ := cmd.Flags().GetString("description")

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}
	t, err := mgr.CreateTask(context.Background(), core.Draft{Title: args[0], Description: desc})
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task created (#%d)\n", t.ID)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var p core.Patch
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		p.Title = &title
	}
	if cmd.Flags().Changed("description") {
		desc, _ := cmd.Flags().GetString("description")
		p.Description = &desc
	}

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}
	if _, err := mgr.UpdateTask(context.Background(), id, p); err != nil {
		return userError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Task updated")
	return nil
}

func runToggle(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}
	t, err := mgr.ToggleTask(context.Background(), id)
	if err != nil {
		return userError(err)
	}
	if t.Done {
		fmt.Fprintln(cmd.OutOrStdout(), "Task marked as done")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Task marked as pending")
	}
	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}
	if err := mgr.DeleteTask(context.Background(), id); err != nil {
		return userError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	mgr, err := e.manager(context.Background())
	if err != nil {
		return userError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderStats(mgr.Stats()))
	return nil
}

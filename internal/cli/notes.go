package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/craftkontrol/memoboard/internal/output"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage free-form notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Add a note",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNoteAdd,
}

var noteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes",
	Args:    cobra.NoArgs,
	RunE:    runNoteList,
}

var noteRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE:    runNoteRm,
}

var shoppingCmd = &cobra.Command{
	Use:     "shoppinglist",
	Aliases: []string{"lists"},
	Short:   "Manage named lists (shopping and otherwise)",
}

var shoppingNewCmd = &cobra.Command{
	Use:   "new NAME [ITEM...]",
	Short: "Create a list, optionally seeded with items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runListNew,
}

var shoppingShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls"},
	Short:   "Show all lists",
	Args:    cobra.NoArgs,
	RunE:    runListShow,
}

var shoppingAddCmd = &cobra.Command{
	Use:   "add LIST_ID ITEM...",
	Short: "Append items to a list",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runListAddItem,
}

var shoppingRmCmd = &cobra.Command{
	Use:     "rm LIST_ID",
	Aliases: []string{"delete"},
	Short:   "Delete a list",
	Args:    cobra.ExactArgs(1),
	RunE:    runListRm,
}

func init() {
	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteRmCmd)
	shoppingCmd.AddCommand(shoppingNewCmd, shoppingShowCmd, shoppingAddCmd, shoppingRmCmd)
	rootCmd.AddCommand(noteCmd, shoppingCmd)
}

func runNoteAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	note, err := a.notebook.AddNote(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, note)
	}
	output.Messagef(os.Stdout, "Added note %s.", note.ID)
	return nil
}

func runNoteList(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	notes, err := a.notebook.Notes(cmd.Context())
	if err != nil {
		return err
	}
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, notes)
	case output.FormatCompact:
		output.NoteCompact(os.Stdout, notes)
	default:
		output.NoteTable(os.Stdout, notes)
	}
	return nil
}

func runNoteRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.notebook.DeleteNote(cmd.Context(), args[0]); err != nil {
		return err
	}
	output.Messagef(os.Stdout, "Deleted note %s.", args[0])
	return nil
}

func runListNew(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.notebook.AddList(cmd.Context(), args[0], args[1:])
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, list)
	}
	output.Messagef(os.Stdout, "Created list %q (%s).", list.Name, list.ID)
	return nil
}

func runListShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	lists, err := a.notebook.Lists(cmd.Context())
	if err != nil {
		return err
	}
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, lists)
	case output.FormatCompact:
		output.ListCompact(os.Stdout, lists)
	default:
		output.ListTable(os.Stdout, lists)
	}
	return nil
}

func runListAddItem(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	list, err := a.notebook.AddListItem(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, list)
	}
	output.Messagef(os.Stdout, "%q now has %d items.", list.Name, len(list.Items))
	return nil
}

func runListRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.notebook.DeleteList(cmd.Context(), args[0]); err != nil {
		return err
	}
	output.Messagef(os.Stdout, "Deleted list %s.", args[0])
	return nil
}

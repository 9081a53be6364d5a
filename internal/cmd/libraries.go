package cmd

import (
	"fmt"

	"github.com/mehmetcc/libdesk/internal/isbn"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/spf13/cobra"
)

var librariesCmd = &cobra.Command{
	Use:     "libraries",
	GroupID: GroupDesk,
	Short:   "Browse libraries known to the library API",
	Args:    cobra.NoArgs,
	RunE:    runLibraries,
}

var bookCmd = &cobra.Command{
	Use:     "book <isbn>",
	GroupID: GroupDesk,
	Short:   "Show a book's details from the library API",
	Args:    cobra.ExactArgs(1),
	RunE:    runBook,
}

func init() {
	rootCmd.AddCommand(librariesCmd, bookCmd)
}

func runLibraries(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	libs, err := a.api.ListLibraries(cmd.Context())
	if err != nil {
		return err
	}
	if len(libs) == 0 {
		fmt.Println(style.Dim.Render("No libraries."))
		return nil
	}
	fmt.Println(style.Header.Render(fmt.Sprintf("%-6s %-24s %-20s %s", "ID", "NAME", "OPEN DAYS", "HOURS")))
	for _, l := range libs {
		fmt.Printf("%-6s %-24s %-20s %s-%s\n", l.ID, l.Name, l.OpenDays, l.OpenTime, l.CloseTime)
	}
	return nil
}

func runBook(cmd *cobra.Command, args []string) error {
	code := isbn.Normalize(args[0])
	if err := isbn.Validate(code); err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.api.LoadBook(cmd.Context(), code)
	if err != nil {
		return err
	}
	const w = 10
	fmt.Println(style.Field("ISBN", b.ISBN, w))
	fmt.Println(style.Field("Title", style.Bold.Render(b.Title), w))
	if b.ByStatement != "" {
		fmt.Println(style.Field("By", b.ByStatement, w))
	}
	if b.PublishDate != "" {
		fmt.Println(style.Field("Published", b.PublishDate, w))
	}
	if b.NumberOfPages > 0 {
		fmt.Println(style.Field("Pages", fmt.Sprint(b.NumberOfPages), w))
	}
	return nil
}

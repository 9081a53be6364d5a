package cmd

import (
	"fmt"

	"github.com/mehmetcc/libdesk/internal/isbn"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/spf13/cobra"
)

var isbnCmd = &cobra.Command{
	Use:     "isbn",
	GroupID: GroupDesk,
	Short:   "ISBN helpers",
	RunE:    requireSubcommand,
}

var isbnCheckCmd = &cobra.Command{
	Use:   "check <isbn>...",
	Short: "Validate ISBN-13 codes as a scanner would read them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runISBNCheck,
}

func init() {
	rootCmd.AddCommand(isbnCmd)
	isbnCmd.AddCommand(isbnCheckCmd)
}

func runISBNCheck(cmd *cobra.Command, args []string) error {
	bad := 0
	for _, raw := range args {
		code := isbn.Normalize(raw)
		if err := isbn.Validate(code); err != nil {
			bad++
			fmt.Printf("%s %s %s\n", style.ErrorPrefix, raw, style.Dim.Render(err.Error()))
			continue
		}
		fmt.Printf("%s %s\n", style.SuccessPrefix, code)
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d codes are not valid ISBN-13", bad, len(args))
	}
	return nil
}

package cmd

import (
	"fmt"
	"time"

	"github.com/mehmetcc/libdesk/internal/desk"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:     "checkout <library-id> <isbn>",
	GroupID: GroupDesk,
	Short:   "Lend a book to a user",
	Long: `Lend a book to a user.

The borrower is named by exactly one of --username, --citizen-id or
--create (which registers the user first when the citizen id is new).

Examples:
  libdesk checkout 3 978-0-306-40615-7 --username UserClientAna1
  libdesk checkout 3 9780306406157 --create --citizen-id 555 --first-name Ana --phone 912345678`,
	Args: cobra.ExactArgs(2),
	RunE: runCheckout,
}

var checkinCmd = &cobra.Command{
	Use:     "checkin <library-id> <isbn>",
	GroupID: GroupDesk,
	Short:   "Return a borrowed book",
	Args:    cobra.ExactArgs(2),
	RunE:    runCheckin,
}

var loansCmd = &cobra.Command{
	Use:     "loans <username>",
	GroupID: GroupDesk,
	Short:   "Show loans recorded by this desk for a user",
	Args:    cobra.ExactArgs(1),
	RunE:    runLoans,
}

var (
	loanUsername  string
	loanCitizenID string
	loanCreate    bool
	loanFirstName string
	loanPhone     string
	loanRole      string
)

func init() {
	rootCmd.AddCommand(checkoutCmd, checkinCmd, loansCmd)

	for _, c := range []*cobra.Command{checkoutCmd, checkinCmd} {
		c.Flags().StringVar(&loanUsername, "username", "", "Borrower username")
		c.Flags().StringVar(&loanCitizenID, "citizen-id", "", "Borrower citizen card number")
	}
	checkinCmd.MarkFlagsMutuallyExclusive("username", "citizen-id")
	checkinCmd.MarkFlagsOneRequired("username", "citizen-id")

	checkoutCmd.Flags().BoolVar(&loanCreate, "create", false, "Register the borrower if the citizen id is new")
	checkoutCmd.Flags().StringVar(&loanFirstName, "first-name", "", "First name (with --create)")
	checkoutCmd.Flags().StringVar(&loanPhone, "phone", "", "Phone number (with --create)")
	checkoutCmd.Flags().StringVar(&loanRole, "role", "client", "Role (with --create)")
	checkoutCmd.MarkFlagsMutuallyExclusive("username", "citizen-id")
	checkoutCmd.MarkFlagsMutuallyExclusive("username", "create")
	checkoutCmd.MarkFlagsOneRequired("username", "citizen-id")
}

func borrower() desk.ResolveRequest {
	switch {
	case loanCreate:
		return desk.ResolveRequest{
			Mode:      desk.ModeCreate,
			CitizenID: loanCitizenID,
			FirstName: loanFirstName,
			Phone:     loanPhone,
			Role:      loanRole,
		}
	case loanCitizenID != "":
		return desk.ResolveRequest{Mode: desk.ModeCitizenID, CitizenID: loanCitizenID}
	default:
		return desk.ResolveRequest{Mode: desk.ModeUsername, Username: loanUsername}
	}
}

func runCheckout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.desk.CheckOut(cmd.Context(), desk.CheckRequest{
		LibraryID:      args[0],
		ISBN:           args[1],
		ResolveRequest: borrower(),
	})
	if err != nil {
		return err
	}
	if res.Created {
		fmt.Printf("%s Registered %s\n", style.SuccessPrefix, style.Bold.Render(res.Person.Username))
	}
	fmt.Printf("%s Checked out %s to %s\n", style.SuccessPrefix, args[1], style.Bold.Render(res.Person.Username))
	if title := res.Checkout.Book.Title; title != "" {
		fmt.Println(style.Field("Title", title, 10))
	}
	if due, ok := res.Checkout.Due(); ok {
		fmt.Println(style.Field("Due", due.Format(time.DateOnly), 10))
	}
	return nil
}

func runCheckin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.desk.CheckIn(cmd.Context(), desk.CheckRequest{
		LibraryID:      args[0],
		ISBN:           args[1],
		ResolveRequest: borrower(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s Checked in %s from %s\n", style.SuccessPrefix, args[1], style.Bold.Render(res.Person.Username))
	return nil
}

func runLoans(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.loans.ListByUsername(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(style.Dim.Render("No loans recorded."))
		return nil
	}
	fmt.Println(style.Header.Render(fmt.Sprintf("%-20s %-9s %-10s %-14s %s", "WHEN", "KIND", "LIBRARY", "ISBN", "DUE")))
	for _, e := range entries {
		due := "-"
		if e.DueDate != nil {
			due = e.DueDate.Format(time.DateOnly)
		}
		fmt.Printf("%-20s %-9s %-10s %-14s %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Kind, e.LibraryID, e.ISBN, due)
	}
	return nil
}

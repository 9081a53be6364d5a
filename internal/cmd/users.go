package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mehmetcc/libdesk/internal/desk"
	"github.com/mehmetcc/libdesk/internal/export"
	"github.com/mehmetcc/libdesk/internal/person"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	GroupID: GroupDesk,
	Short:   "Manage registered library users",
	Long: `Manage the library user registry.

Examples:
  libdesk users list
  libdesk users find --citizen-id 12345678
  libdesk users add --citizen-id 12345678 --first-name João --phone 912345678 --role librarian
  libdesk users export --format xlsx`,
	RunE: requireSubcommand,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every registered user",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersFindCmd = &cobra.Command{
	Use:   "find",
	Short: "Look a user up by username or citizen id",
	Args:  cobra.NoArgs,
	RunE:  runUsersFind,
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a user and print the generated username",
	Long: `Register a user and print the generated username.

A citizen id that is already registered is not registered twice; the
existing user is shown instead.`,
	Args: cobra.NoArgs,
	RunE: runUsersAdd,
}

var usersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the registry to an xlsx or json file",
	Args:  cobra.NoArgs,
	RunE:  runUsersExport,
}

var (
	usersUsername  string
	usersCitizenID string
	usersFirstName string
	usersPhone     string
	usersRole      string
	exportFormat   string
	exportOut      string
)

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd, usersFindCmd, usersAddCmd, usersExportCmd)

	usersFindCmd.Flags().StringVar(&usersUsername, "username", "", "Username to look up")
	usersFindCmd.Flags().StringVar(&usersCitizenID, "citizen-id", "", "Citizen card number to look up")
	usersFindCmd.MarkFlagsMutuallyExclusive("username", "citizen-id")
	usersFindCmd.MarkFlagsOneRequired("username", "citizen-id")

	usersAddCmd.Flags().StringVar(&usersCitizenID, "citizen-id", "", "Citizen card number")
	usersAddCmd.Flags().StringVar(&usersFirstName, "first-name", "", "First name")
	usersAddCmd.Flags().StringVar(&usersPhone, "phone", "", "Phone number")
	usersAddCmd.Flags().StringVar(&usersRole, "role", "client", "admin, librarian or client")
	_ = usersAddCmd.MarkFlagRequired("citizen-id")
	_ = usersAddCmd.MarkFlagRequired("first-name")
	_ = usersAddCmd.MarkFlagRequired("phone")

	usersExportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx or json")
	usersExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default users_<timestamp>.<format>)")
}

func runUsersList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.registry.ListAll(cmd.Context())
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No users registered. Run 'libdesk users add' to register the first one.")
		return nil
	}

	fmt.Println(style.Header.Render(fmt.Sprintf("%-28s %-10s %-16s %s", "USERNAME", "ROLE", "CITIZEN ID", "FIRST NAME")))
	for _, u := range users {
		fmt.Printf("%-28s %-10s %-16s %s\n", u.Username, u.Role, u.CitizenID, u.FirstName)
	}
	fmt.Println(style.Dim.Render(fmt.Sprintf("%d users", len(users))))
	return nil
}

func runUsersFind(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	req := desk.ResolveRequest{Mode: desk.ModeUsername, Username: usersUsername}
	if usersCitizenID != "" {
		req = desk.ResolveRequest{Mode: desk.ModeCitizenID, CitizenID: usersCitizenID}
	}
	res, err := a.desk.Resolve(cmd.Context(), req)
	if errors.Is(err, desk.ErrUserNotFound) {
		fmt.Println(style.Dim.Render("No matching user."))
		return nil
	}
	if err != nil {
		return err
	}
	printPerson(res.Person)
	return nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.desk.Resolve(cmd.Context(), desk.ResolveRequest{
		Mode:      desk.ModeCreate,
		CitizenID: usersCitizenID,
		FirstName: usersFirstName,
		Phone:     usersPhone,
		Role:      usersRole,
	})
	if err != nil {
		return err
	}
	if res.Created {
		fmt.Printf("%s Registered %s\n", style.SuccessPrefix, style.Bold.Render(res.Person.Username))
	} else {
		fmt.Printf("%s Citizen id already registered as %s\n", style.WarningPrefix, style.Bold.Render(res.Person.Username))
	}
	printPerson(res.Person)
	return nil
}

func runUsersExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format != "xlsx" && format != "json" {
		return fmt.Errorf("unsupported format %q (want xlsx or json)", exportFormat)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.registry.ListAll(cmd.Context())
	if err != nil {
		return err
	}

	var body []byte
	if format == "xlsx" {
		body, err = export.UsersXLSX(users)
	} else {
		var buf bytes.Buffer
		err = export.UsersJSON(&buf, users)
		body = buf.Bytes()
	}
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = export.Filename("users", format, time.Now())
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("%s Exported %d users to %s\n", style.SuccessPrefix, len(users), out)
	return nil
}

func printPerson(p *person.Person) {
	const w = 12
	fmt.Println(style.Field("Username", style.Bold.Render(p.Username), w))
	fmt.Println(style.Field("Role", p.Role.String(), w))
	fmt.Println(style.Field("First name", p.FirstName, w))
	fmt.Println(style.Field("Citizen id", p.CitizenID, w))
	fmt.Println(style.Field("Phone", p.Phone, w))
	if !p.CreatedAt.IsZero() {
		fmt.Println(style.Field("Registered", p.CreatedAt.Local().Format(time.DateTime), w))
	}
}

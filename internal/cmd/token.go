package cmd

import (
	"fmt"
	"slices"
	"time"

	"github.com/mehmetcc/libdesk/internal/auth"
	"github.com/mehmetcc/libdesk/internal/person"
	"github.com/mehmetcc/libdesk/internal/style"
	"github.com/mehmetcc/libdesk/internal/token"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:     "token",
	GroupID: GroupAdmin,
	Short:   "Manage staff access tokens",
	RunE:    requireSubcommand,
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <username>",
	Short: "Issue an access token for a registered staff member",
	Long: `Issue an access token for a registered user.

The token carries the user's role. Only Admin and Librarian tokens are
accepted by the desk service.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenIssue,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.registry.FindByUsername(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no user named %q", args[0])
	}
	if !isStaff(p.Role) {
		fmt.Printf("%s %s is a %s; the desk service will reject this token\n",
			style.WarningPrefix, p.Username, p.Role)
	}

	res, err := token.NewTokenService(a.logger, a.cfg.JWTConfig).Issue(p.Username, p.Role)
	if err != nil {
		return err
	}
	fmt.Println(res.AccessToken)
	fmt.Println(style.Dim.Render("expires " + res.AccessExpiresAt.Local().Format(time.DateTime)))
	return nil
}

func isStaff(r person.Role) bool {
	return slices.Contains(auth.StaffRoles, r)
}

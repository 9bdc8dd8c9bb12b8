package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coffeeshop/cli/auth"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the coffee shop",
	RunE:  silenceUsage(logout),
}

func init() {
	rootCmd.AddCommand(logoutCmd)

	logoutCmd.Flags().String("return-to", "", "where the browser goes after logout, at or below the callback url")
}

func logout(cmd *cobra.Command, args []string) error {
	returnTo, err := cmd.Flags().GetString("return-to")
	if err != nil {
		return err
	}

	p, err := auth.NewProvider(C.Auth)
	if err != nil {
		return err
	}
	if returnTo != "" {
		if err := p.CheckRedirect(returnTo); err != nil {
			return UserError{Msg: "--return-to must point at the callback url", Err: err}
		}
	}

	err = auth.NewStore(L.AuthFile()).Remove()
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		fmt.Fprintln(cmd.OutOrStdout(), "You are not logged in.")
	case err != nil:
		return err
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "You are now logged out. To login again type: coffee login")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "To end your browser session visit: %s\n", p.LogoutURL(returnTo))

	return nil
}

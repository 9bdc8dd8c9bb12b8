package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coffeeshop/cli/auth"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the access token of the logged in user",
	RunE:  silenceUsage(token),
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().BoolP("permissions", "p", false, "print the permissions granted by the token instead")
	tokenCmd.Flags().Bool("verify", false, "verify the token against the identity provider's keys")
}

func token(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return UserError{Msg: "token does not take any arguments", Err: fmt.Errorf("invalid number of input arguments")}
	}

	perms, err := cmd.Flags().GetBool("permissions")
	if err != nil {
		return err
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return err
	}

	t, err := accessToken(cmd.Context())
	if err != nil {
		return err
	}

	if !perms && !verify {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t)
		return err
	}

	var claims *auth.Claims
	if verify {
		p, err := auth.NewProvider(C.Auth)
		if err != nil {
			return err
		}
		claims, err = p.Verifier().Verify(cmd.Context(), t)
		if err != nil {
			return err
		}
	} else {
		claims, err = auth.ParseUnverified(t)
		if err != nil {
			return err
		}
	}

	return output(cmd, permissionsView{
		Subject:     claims.Subject(),
		Permissions: claims.Permissions(),
	})
}

// accessToken returns the stored access token, refreshing it first when it
// has expired and a refresh token is available.
func accessToken(ctx context.Context) (string, error) {
	store := auth.NewStore(L.AuthFile())
	t, err := store.Load()
	if err != nil {
		return "", err
	}

	if !t.Expired(time.Now()) {
		return t.AccessToken, nil
	}
	if t.RefreshToken == "" {
		return "", fmt.Errorf("session expired: %w", auth.ErrNotLoggedIn)
	}

	p, err := auth.NewProvider(C.Auth)
	if err != nil {
		return "", err
	}
	tok, err := p.Refresh(ctx, t.RefreshToken)
	if err != nil {
		return "", err
	}

	refreshed := auth.NewTokenResponse(tok)
	if refreshed.IDToken == "" {
		refreshed.IDToken = t.IDToken
	}
	if err := store.Save(refreshed); err != nil {
		return "", err
	}

	log.Debug("refreshed access token")
	return refreshed.AccessToken, nil
}

type permissionsView struct {
	Subject     string   `json:"subject"`
	Permissions []string `json:"permissions"`
}

func (p permissionsView) Header() table.Row {
	return table.Row{"Permission"}
}

func (p permissionsView) Rows() []table.Row {
	rows := make([]table.Row, 0, len(p.Permissions))
	for _, perm := range p.Permissions {
		rows = append(rows, table.Row{perm})
	}
	return rows
}

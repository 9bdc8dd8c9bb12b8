package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/coffeeshop/cli/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the coffee shop",
	Long: `Log in to the coffee shop.

By default a browser is opened on the identity provider's login page and the
result is received on the registered callback url. Use --device on machines
without a browser.`,
	RunE: silenceUsage(login),
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().Bool("device", false, "use the device authorization flow")
	loginCmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for the login to complete")
}

// openBrowser is replaced in tests.
var openBrowser = openbrowser

func login(cmd *cobra.Command, args []string) error {
	device, err := cmd.Flags().GetBool("device")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	p, err := auth.NewProvider(C.Auth)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var tok *oauth2.Token
	if device {
		tok, err = loginDevice(ctx, cmd, p)
	} else {
		tok, err = loginBrowser(ctx, cmd, p)
	}
	if err != nil {
		return err
	}

	if err := auth.NewStore(L.AuthFile()).Save(auth.NewTokenResponse(tok)); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Congratulations, you're all set!")
	return nil
}

func loginDevice(ctx context.Context, cmd *cobra.Command, p *auth.Provider) (*oauth2.Token, error) {
	dc, err := p.DeviceCode(ctx)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Your CLI confirmation code is: %s\n", dc.UserCode)
	fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to complete the login process: %s\n", dc.VerificationURIComplete)
	// Since we're printing the URL, we can safely ignore any error attempting to open the browser
	_ = openBrowser(dc.VerificationURIComplete)

	return p.Wait(ctx, dc)
}

func loginBrowser(ctx context.Context, cmd *cobra.Command, p *auth.Provider) (*oauth2.Token, error) {
	callback := p.Callback()
	ln, err := net.Listen("tcp", callback.Host)
	if err != nil {
		return nil, fmt.Errorf("unable to listen on callback url %s: %w", callback, err)
	}

	state, verifier := auth.NewState(), auth.NewVerifier()
	results := make(chan auth.Result, 1)

	path := callback.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.Handle(path, p.CallbackHandler(state, verifier, results))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	u := p.AuthCodeURL(state, verifier)
	fmt.Fprintf(cmd.OutOrStdout(), "Visit this URL to complete the login process: %s\n", u)
	_ = openBrowser(u)

	log.WithField("callback_url", callback.String()).Debug("waiting for login")

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("login did not complete: %w", ctx.Err())
	case res := <-results:
		return res.Token, res.Err
	}
}

// Based on GIST: https://gist.github.com/hyg/9c4afcd91fe24316cbf0
func openbrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	}
	return fmt.Errorf("unsupported platform")
}

package cmd

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/coffeeshop/cli/auth"
)

// testAccessToken signs a token with a throwaway key. The CLI only reads its
// claims unless --verify is passed.
func testAccessToken(t *testing.T, perms ...string) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Subject("auth0|barista").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("permissions", perms).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	b, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, key))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// writeAuthFile writes an auth file as `coffee login` would.
func writeAuthFile(t *testing.T, tr *auth.TokenResponse) {
	t.Helper()
	if err := auth.NewStore(L.AuthFile()).Save(tr); err != nil {
		t.Fatal(err)
	}
}

func TestTokenNotLoggedIn(t *testing.T) {
	cmd, _, _ := getCmd(t)
	cmd.SetArgs([]string{"token"})

	if err := cmd.Execute(); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestToken(t *testing.T) {
	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo", Expiry: time.Now().Add(time.Hour)})

	cmd.SetArgs([]string{"token"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if got, want := stdout.String(), "foo\n"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestTokenPermissions(t *testing.T) {
	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: testAccessToken(t, "get:drinks-detail", "patch:drinks")})

	cmd.SetArgs([]string{"token", "--permissions", "-o", "json"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var got permissionsView
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %s", stdout.String(), err)
	}

	want := permissionsView{Subject: "auth0|barista", Permissions: []string{"get:drinks-detail", "patch:drinks"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestTokenRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
			return
		}
		if got, want := r.PostForm.Get("grant_type"), "refresh_token"; got != want {
			t.Errorf("wrong grant type; got %q want %q", got, want)
		}
		if got, want := r.PostForm.Get("refresh_token"), "r1"; got != want {
			t.Errorf("wrong refresh token; got %q want %q", got, want)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()
	t.Setenv("COFFEE_AUTH_PROVIDER_DOMAIN", srv.URL)

	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{
		AccessToken:  "stale",
		RefreshToken: "r1",
		IDToken:      "id",
		Expiry:       time.Now().Add(-time.Minute),
	})

	cmd.SetArgs([]string{"token"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if got, want := strings.TrimSpace(stdout.String()), "fresh"; got != want {
		t.Errorf("got %q want %q", got, want)
	}

	stored, err := auth.NewStore(L.AuthFile()).Load()
	if err != nil {
		t.Fatal(err)
	}
	if stored.AccessToken != "fresh" || stored.RefreshToken != "r1" || stored.IDToken != "id" {
		t.Errorf("refreshed token not stored correctly: %+v", stored)
	}
}

func TestTokenExpiredWithoutRefresh(t *testing.T) {
	cmd, _, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "stale", Expiry: time.Now().Add(-time.Minute)})

	cmd.SetArgs([]string{"token"})
	if err := cmd.Execute(); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo"})

	cmd.SetArgs([]string{"logout"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stdout.String(), "You are now logged out") {
		t.Errorf("unexpected output %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "returnTo=http%3A%2F%2Flocalhost%3A8100") {
		t.Errorf("logout url should return to the callback url: %q", stdout.String())
	}

	if _, err := auth.NewStore(L.AuthFile()).Load(); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Errorf("auth file still present: %v", err)
	}
}

func TestLogoutNotLoggedIn(t *testing.T) {
	cmd, stdout, _ := getCmd(t)
	cmd.SetArgs([]string{"logout"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(stdout.String(), "You are not logged in.") {
		t.Errorf("unexpected output %q", stdout.String())
	}
}

func TestLogoutReturnTo(t *testing.T) {
	tests := []struct {
		name     string
		returnTo string
		err      error
	}{
		{name: "below callback", returnTo: "http://localhost:8100/tabs/user-page"},
		{name: "other host", returnTo: "http://evil.example:8100/", err: auth.ErrRedirectNotAllowed},
		{name: "other port", returnTo: "http://localhost:8200", err: auth.ErrRedirectNotAllowed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd, stdout, _ := getCmd(t)
			writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo"})

			cmd.SetArgs([]string{"logout", "--return-to", test.returnTo})
			err := cmd.Execute()
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Fatalf("expected %v, got %v", test.err, err)
				}
				if _, err := auth.NewStore(L.AuthFile()).Load(); err != nil {
					t.Errorf("rejected logout removed the token: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}

			if want := "returnTo=" + url.QueryEscape(test.returnTo); !strings.Contains(stdout.String(), want) {
				t.Errorf("logout url should contain %q: %q", want, stdout.String())
			}
		})
	}
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/coffeeshop/cli/api"
	"github.com/coffeeshop/cli/auth"
	"github.com/coffeeshop/cli/entities"
)

func TestDrinksListAnonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/drinks"; got != want {
			t.Errorf("wrong path; got %q want %q", got, want)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected authorization header %q", got)
		}
		fmt.Fprint(w, `{"success":true,"drinks":[{"id":1,"title":"Matcha Shake","recipe":[{"color":"green","parts":1}]}]}`)
	}))
	defer srv.Close()

	cmd, stdout, _ := getCmd(t)
	cmd.SetArgs([]string{"drinks", "list", "--url", srv.URL})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Matcha Shake", "1 × green"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("output missing %q:\n%s", want, stdout.String())
		}
	}
}

func TestDrinksListDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.URL.Path, "/drinks-detail"; got != want {
			t.Errorf("wrong path; got %q want %q", got, want)
		}
		if got, want := r.Header.Get("Authorization"), "Bearer foo"; got != want {
			t.Errorf("wrong authorization header; got %q want %q", got, want)
		}
		fmt.Fprint(w, `{"success":true,"drinks":[{"id":1,"title":"Matcha Shake","recipe":[{"name":"matcha","color":"green","parts":1}]}]}`)
	}))
	defer srv.Close()
	t.Setenv("COFFEE_API_SERVER_URL", srv.URL)

	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo", Expiry: time.Now().Add(time.Hour)})

	cmd.SetArgs([]string{"drinks", "list", "--detail", "-o", "json"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	var got []entities.Drink
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %s", stdout.String(), err)
	}
	want := []entities.Drink{{ID: 1, Title: "Matcha Shake", Recipe: []entities.Ingredient{{Name: "matcha", Color: "green", Parts: 1}}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestDrinksListDetailRequiresLogin(t *testing.T) {
	cmd, _, _ := getCmd(t)
	cmd.SetArgs([]string{"drinks", "list", "--detail"})

	if err := cmd.Execute(); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestDrinksListForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"success":false,"error":403,"message":"permission not found"}`)
	}))
	defer srv.Close()

	cmd, _, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo"})

	cmd.SetArgs([]string{"drinks", "list", "-d", "-u", srv.URL})
	if err := cmd.Execute(); !errors.Is(err, api.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDrinksUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()

	cmd, _, _ := getCmd(t)
	cmd.SetArgs([]string{"drinks", "list", "--url", u})

	err := cmd.Execute()
	if err == nil || !strings.HasPrefix(err.Error(), "list failed") {
		t.Fatalf("expected a connection failure, got %v", err)
	}
}

func TestDrinksCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Method, http.MethodPost; got != want {
			t.Errorf("wrong method; got %s want %s", got, want)
		}

		var d entities.Drink
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			t.Error(err)
			return
		}
		want := entities.Drink{Title: "Flat White", Recipe: []entities.Ingredient{
			{Name: "espresso", Color: "brown", Parts: 1},
			{Name: "milk", Color: "white", Parts: 2},
		}}
		if !reflect.DeepEqual(d, want) {
			t.Errorf("unexpected drink; got %+v want %+v", d, want)
		}

		d.ID = 9
		_ = json.NewEncoder(w).Encode(entities.DrinksResponse{Success: true, Drinks: []entities.Drink{d}})
	}))
	defer srv.Close()

	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo"})

	cmd.SetArgs([]string{"drinks", "create", "--url", srv.URL,
		"--title", "Flat White", "-i", "espresso:brown:1", "-i", "milk:white:2"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stdout.String(), "Flat White") {
		t.Errorf("output missing the drink:\n%s", stdout.String())
	}
}

func TestDrinksCreateInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no title", args: []string{"-i", "milk:white:2"}},
		{name: "no ingredients", args: []string{"--title", "Milk"}},
		{name: "bad ingredient", args: []string{"--title", "Milk", "-i", "milk:white"}},
		{name: "bad parts", args: []string{"--title", "Milk", "-i", "milk:white:0"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd, _, _ := getCmd(t)
			cmd.SetArgs(append([]string{"drinks", "create"}, test.args...))

			var uerr UserError
			if err := cmd.Execute(); !errors.As(err, &uerr) {
				t.Fatalf("expected a UserError, got %v", err)
			}
		})
	}
}

func TestDrinksUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Method+" "+r.URL.Path, "PATCH /drinks/4"; got != want {
			t.Errorf("wrong request; got %q want %q", got, want)
		}
		fmt.Fprint(w, `{"success":true,"drinks":[{"id":4,"title":"Cortado","recipe":[]}]}`)
	}))
	defer srv.Close()

	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo"})

	cmd.SetArgs([]string{"drinks", "update", "4", "--title", "Cortado", "--url", srv.URL})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(stdout.String(), "Cortado") {
		t.Errorf("output missing the drink:\n%s", stdout.String())
	}
}

func TestDrinksDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got, want := r.Method+" "+r.URL.Path, "DELETE /drinks/4"; got != want {
			t.Errorf("wrong request; got %q want %q", got, want)
		}
		fmt.Fprint(w, `{"success":true,"delete":4}`)
	}))
	defer srv.Close()

	cmd, stdout, _ := getCmd(t)
	writeAuthFile(t, &auth.TokenResponse{AccessToken: "foo"})

	cmd.SetArgs([]string{"drinks", "delete", "4", "--url", srv.URL})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	if got, want := stdout.String(), "Deleted drink 4\n"; got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestDrinksDeleteInvalidID(t *testing.T) {
	cmd, _, _ := getCmd(t)
	cmd.SetArgs([]string{"drinks", "delete", "four"})

	var uerr UserError
	if err := cmd.Execute(); !errors.As(err, &uerr) {
		t.Fatalf("expected a UserError, got %v", err)
	}
}

func TestParseIngredient(t *testing.T) {
	got, err := parseIngredient("milk:white:2")
	if err != nil {
		t.Fatal(err)
	}
	if want := (entities.Ingredient{Name: "milk", Color: "white", Parts: 2}); got != want {
		t.Errorf("got %+v want %+v", got, want)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/coffeeshop/cli/api"
	"github.com/coffeeshop/cli/auth"
	"github.com/coffeeshop/cli/entities"
)

var drinksCmd = &cobra.Command{
	Use:   "drinks",
	Short: "Manage the drinks on the menu",
}

var drinksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the drinks on the menu",
	Long: `List the drinks on the menu.

With --detail the ingredient names are included. This requires a login with
the get:drinks-detail permission.`,
	RunE: silenceUsage(drinksList),
}

var drinksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a drink to the menu",
	Example: `  coffee drinks create --title "Flat White" \
    --ingredient espresso:brown:1 --ingredient milk:white:2`,
	RunE: silenceUsage(drinksCreate),
}

var drinksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the title or recipe of a drink",
	RunE:  silenceUsage(drinksUpdate),
}

var drinksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a drink from the menu",
	RunE:  silenceUsage(drinksDelete),
}

func init() {
	rootCmd.AddCommand(drinksCmd)
	drinksCmd.AddCommand(drinksListCmd, drinksCreateCmd, drinksUpdateCmd, drinksDeleteCmd)

	drinksListCmd.Flags().BoolP("detail", "d", false, "include ingredient names")

	for _, c := range []*cobra.Command{drinksCreateCmd, drinksUpdateCmd} {
		c.Flags().StringP("title", "t", "", "drink title")
		c.Flags().StringArrayP("ingredient", "i", nil, "recipe ingredient as name:color:parts, repeatable")
	}
}

// newAPIClient builds a client for the configured API server. When
// requireLogin is false a missing login is not an error.
func newAPIClient(cmd *cobra.Command, requireLogin bool) (*api.Client, error) {
	opts := []api.Option{}

	t, err := accessToken(cmd.Context())
	switch {
	case err == nil:
		opts = append(opts, api.WithToken(t))
	case errors.Is(err, auth.ErrNotLoggedIn) && !requireLogin:
		log.Debug("not logged in, calling the api anonymously")
	default:
		return nil, err
	}

	return api.NewClient(C.APIServerURL, opts...), nil
}

func drinksList(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return UserError{Msg: "list does not take any arguments", Err: fmt.Errorf("invalid number of input arguments")}
	}

	detail, err := cmd.Flags().GetBool("detail")
	if err != nil {
		return err
	}

	c, err := newAPIClient(cmd, detail)
	if err != nil {
		return err
	}

	var drinks []entities.Drink
	if detail {
		drinks, err = c.DrinksDetail(cmd.Context())
	} else {
		drinks, err = c.Drinks(cmd.Context())
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, api.ErrForbidden) {
			return err
		}
		return fmt.Errorf("list failed: %w", err)
	}

	return output(cmd, drinksView(drinks))
}

func drinksCreate(cmd *cobra.Command, args []string) error {
	d, err := drinkFromFlags(cmd)
	if err != nil {
		return err
	}
	if d.Title == "" || len(d.Recipe) == 0 {
		return UserError{Msg: "a drink needs a title and at least one ingredient", Err: errors.New("missing --title or --ingredient")}
	}

	c, err := newAPIClient(cmd, true)
	if err != nil {
		return err
	}

	created, err := c.CreateDrink(cmd.Context(), *d)
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	return output(cmd, drinksView{*created})
}

func drinksUpdate(cmd *cobra.Command, args []string) error {
	id, err := drinkID(args)
	if err != nil {
		return err
	}

	d, err := drinkFromFlags(cmd)
	if err != nil {
		return err
	}
	if d.Title == "" && len(d.Recipe) == 0 {
		return UserError{Msg: "nothing to update", Err: errors.New("pass --title or --ingredient")}
	}

	c, err := newAPIClient(cmd, true)
	if err != nil {
		return err
	}

	updated, err := c.UpdateDrink(cmd.Context(), id, *d)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	return output(cmd, drinksView{*updated})
}

func drinksDelete(cmd *cobra.Command, args []string) error {
	id, err := drinkID(args)
	if err != nil {
		return err
	}

	c, err := newAPIClient(cmd, true)
	if err != nil {
		return err
	}

	deleted, err := c.DeleteDrink(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted drink %d\n", deleted)
	return nil
}

func drinkID(args []string) (int, error) {
	if len(args) != 1 {
		return 0, UserError{Msg: "you must pass a drink id", Err: fmt.Errorf("invalid number of input arguments")}
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, UserError{Msg: "drink id must be a number", Err: err}
	}
	return id, nil
}

func drinkFromFlags(cmd *cobra.Command) (*entities.Drink, error) {
	title, err := cmd.Flags().GetString("title")
	if err != nil {
		return nil, err
	}
	specs, err := cmd.Flags().GetStringArray("ingredient")
	if err != nil {
		return nil, err
	}

	d := &entities.Drink{Title: title}
	for _, s := range specs {
		i, err := parseIngredient(s)
		if err != nil {
			return nil, UserError{Msg: "invalid --ingredient", Err: err}
		}
		d.Recipe = append(d.Recipe, i)
	}
	return d, nil
}

// parseIngredient reads name:color:parts.
func parseIngredient(s string) (entities.Ingredient, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return entities.Ingredient{}, fmt.Errorf("%q is not name:color:parts", s)
	}

	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return entities.Ingredient{}, fmt.Errorf("%q: parts must be a positive number", s)
	}

	return entities.Ingredient{Name: parts[0], Color: parts[1], Parts: n}, nil
}

type drinksView []entities.Drink

func (d drinksView) Header() table.Row {
	return table.Row{"ID", "Title", "Recipe"}
}

func (d drinksView) Rows() []table.Row {
	rows := make([]table.Row, 0, len(d))
	for _, drink := range d {
		recipe := make([]string, 0, len(drink.Recipe))
		for _, i := range drink.Recipe {
			label := i.Color
			if i.Name != "" {
				label = i.Name + " (" + i.Color + ")"
			}
			recipe = append(recipe, fmt.Sprintf("%d × %s", i.Parts, label))
		}
		rows = append(rows, table.Row{drink.ID, drink.Title, strings.Join(recipe, ", ")})
	}
	return rows
}

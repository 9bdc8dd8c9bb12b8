package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coffeeshop/cli/entities"
)

var errUnsuccessful = errors.New("server reported an unsuccessful request")

// Drinks lists the menu with the short recipe representation. It does not
// need a token.
func (c *Client) Drinks(ctx context.Context) ([]entities.Drink, error) {
	return c.drinks(ctx, http.MethodGet, "/drinks", nil)
}

// DrinksDetail lists the menu with ingredient names. Requires the
// get:drinks-detail permission.
func (c *Client) DrinksDetail(ctx context.Context) ([]entities.Drink, error) {
	return c.drinks(ctx, http.MethodGet, "/drinks-detail", nil)
}

func (c *Client) CreateDrink(ctx context.Context, d entities.Drink) (*entities.Drink, error) {
	drinks, err := c.drinks(ctx, http.MethodPost, "/drinks", d)
	if err != nil {
		return nil, err
	}
	return first(drinks)
}

// UpdateDrink patches the title and/or recipe of drink id. Zero fields of d
// are left out of the request.
func (c *Client) UpdateDrink(ctx context.Context, id int, d entities.Drink) (*entities.Drink, error) {
	patch := map[string]any{}
	if d.Title != "" {
		patch["title"] = d.Title
	}
	if len(d.Recipe) > 0 {
		patch["recipe"] = d.Recipe
	}

	drinks, err := c.drinks(ctx, http.MethodPatch, fmt.Sprintf("/drinks/%d", id), patch)
	if err != nil {
		return nil, err
	}
	return first(drinks)
}

// DeleteDrink removes drink id and returns the id the server deleted.
func (c *Client) DeleteDrink(ctx context.Context, id int) (int, error) {
	var res entities.DeleteResponse
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/drinks/%d", id), nil, &res); err != nil {
		return 0, err
	}
	if !res.Success {
		return 0, errUnsuccessful
	}
	return res.Delete, nil
}

func (c *Client) drinks(ctx context.Context, method, path string, in any) ([]entities.Drink, error) {
	var res entities.DrinksResponse
	if err := c.do(ctx, method, path, in, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, errUnsuccessful
	}
	return res.Drinks, nil
}

func first(drinks []entities.Drink) (*entities.Drink, error) {
	if len(drinks) == 0 {
		return nil, errors.New("no drink in response")
	}
	return &drinks[0], nil
}

package entities

import "fmt"

// Ingredient is one layer of a drink. Name is only present in the
// detailed representation.
type Ingredient struct {
	Name  string `json:"name,omitempty"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

type Drink struct {
	ID     int          `json:"id,omitempty"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// Parts is the total number of parts across the recipe.
func (d Drink) Parts() int {
	n := 0
	for _, i := range d.Recipe {
		n += i.Parts
	}
	return n
}

func (d Drink) String() string {
	return fmt.Sprintf("%s (#%d)", d.Title, d.ID)
}

type DrinksResponse struct {
	Success bool    `json:"success"`
	Drinks  []Drink `json:"drinks"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
	Delete  int  `json:"delete"`
}

package assistant

import "strings"

// MenuItem is one orderable dish.
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int    `json:"price_cents"`
}

// Menu is the fixed restaurant menu the assistant can order from.
var Menu = []MenuItem{
	{ID: "margherita", Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", PriceCents: 1250},
	{ID: "pepperoni", Name: "Pepperoni Pizza", Description: "Tomato, mozzarella, pepperoni", PriceCents: 1450},
	{ID: "caesar", Name: "Caesar Salad", Description: "Romaine, parmesan, croutons", PriceCents: 950},
	{ID: "carbonara", Name: "Spaghetti Carbonara", Description: "Egg, pecorino, guanciale", PriceCents: 1350},
	{ID: "tiramisu", Name: "Tiramisu", Description: "Mascarpone, espresso, cocoa", PriceCents: 700},
	{ID: "lemonade", Name: "Fresh Lemonade", Description: "House-made, lightly sweetened", PriceCents: 450},
}

// FindMenuItem looks an item up by ID or name, case-insensitively.
func FindMenuItem(idOrName string) (MenuItem, bool) {
	needle := strings.ToLower(strings.TrimSpace(idOrName))
	for _, item := range Menu {
		if strings.ToLower(item.ID) == needle || strings.ToLower(item.Name) == needle {
			return item, true
		}
	}
	return MenuItem{}, false
}

package domain

import "strings"

// Menu is the list of dishes a deployment offers.
type Menu []DishPreference

// DefaultMenu is used when no menu is configured.
var DefaultMenu = Menu{Chicken, Steak, Pancakes, Pizza}

// ParseMenu builds a Menu from a comma separated list. Blank input yields DefaultMenu.
func ParseMenu(raw string) Menu {
	var m Menu
	seen := make(map[DishPreference]bool)
	for _, part := range strings.Split(raw, ",") {
		dish := DishPreference(strings.ToLower(strings.TrimSpace(part)))
		if dish == "" || seen[dish] {
			continue
		}
		seen[dish] = true
		m = append(m, dish)
	}
	if len(m) == 0 {
		return DefaultMenu
	}
	return m
}

// Contains reports whether dish is on the menu.
func (m Menu) Contains(dish DishPreference) bool {
	for _, d := range m {
		if d == dish {
			return true
		}
	}
	return false
}

// Validate accepts an empty dish or one that is on the menu.
func (m Menu) Validate(dish DishPreference) error {
	if dish == "" || m.Contains(dish) {
		return nil
	}
	return Invalid("dishPreference", "dish "+quote(string(dish))+" is not on the menu")
}

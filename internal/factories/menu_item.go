package factories

import (
	"math/rand"

	"github.com/lucsky/cuid"

	"github.com/posfoundry/tablepos/internal/models"
)

type MenuItemFactory struct{}

func (mf *MenuItemFactory) CreateMenuItem(branchID string) *models.MenuItem {
	category := randomCategory()
	return &models.MenuItem{
		ID:       cuid.New(),
		BranchID: branchID,
		Name:     randomDish(category),
		Price:    fake.Float64(2, 5, 50),
		Category: category,
	}
}

func randomCategory() string {
	categories := []string{"appetizer", "main course", "side dish", "dessert", "drink"}
	return categories[rand.Intn(len(categories))]
}

func randomDish(category string) string {
	dishes := map[string][]string{
		"appetizer":   {"Bruschetta", "Spring Rolls", "Garlic Bread", "Hummus", "Calamari"},
		"main course": {"Margherita Pizza", "Spaghetti Carbonara", "Grilled Salmon", "Chicken Tikka Masala", "BBQ Ribs", "Pad Thai"},
		"side dish":   {"Fries", "Caesar Salad", "Rice Pilaf", "Grilled Vegetables"},
		"dessert":     {"Tiramisu", "Cheesecake", "Baklava", "Apple Pie", "Mango Sticky Rice"},
		"drink":       {"Lemonade", "Iced Tea", "Espresso", "Chocolate Shake", "Fresh Orange Juice"},
	}
	if names, ok := dishes[category]; ok {
		return names[rand.Intn(len(names))]
	}
	return "Special of the Day"
}

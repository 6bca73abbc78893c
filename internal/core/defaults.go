package core

func seed(name, color, description string) CategoryFields {
	return CategoryFields{Name: name, Color: color, Description: &description}
}

// DefaultCategories is the starter set installed when seeding is enabled.
func DefaultCategories() []CategoryFields {
	return []CategoryFields{
		seed("Food & Dining", "#EF4444", "Restaurants, groceries, food delivery, and dining out"),
		seed("Transportation", "#3B82F6", "Gas, public transport, ride sharing, car maintenance"),
		seed("Shopping", "#8B5CF6", "Clothing, electronics, books, general shopping"),
		seed("Entertainment", "#F59E0B", "Movies, concerts, games, hobbies, streaming services"),
		seed("Bills & Utilities", "#10B981", "Electricity, water, internet, phone, rent"),
		seed("Healthcare", "#EC4899", "Medical appointments, pharmacy, insurance, wellness"),
		seed("Education", "#06B6D4", "Courses, books, training, workshops"),
		seed("Travel", "#84CC16", "Hotels, flights, vacation expenses, travel insurance"),
		seed("Personal Care", "#F43F5E", "Haircuts, cosmetics, spa, personal grooming"),
		seed("Other", "#6B7280", "Miscellaneous expenses that don't fit other categories"),
	}
}

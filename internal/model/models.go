package model

// All returns every persisted model in dependency order, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Airline{},
		&Flight{},
		&Booking{},
		&Favorite{},
		&Review{},
	}
}

package model

import "time"

// Favorite marks a flight saved by a user.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_favorite_user_flight"`
	FlightID  uint      `json:"flightId" gorm:"not null;uniqueIndex:idx_favorite_user_flight;index"`
	CreatedAt time.Time `json:"createdAt"`

	Flight *Flight `json:"flight,omitempty" gorm:"foreignKey:FlightID"`
}

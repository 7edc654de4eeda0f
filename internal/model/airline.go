package model

import "time"

// Airline is the profile extension of a User with role airline. Name always
// mirrors the owning user's name; credentials live on the user row only.
type Airline struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Code      string    `json:"code" gorm:"size:10;not null;uniqueIndex"`
	CUIT      string    `json:"cuit" gorm:"column:cuit;size:20;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingActive    BookingStatus = "Activo"
	BookingInactive  BookingStatus = "Inactivo"
	BookingCancelled BookingStatus = "Cancelado"
)

// Passenger is one traveller listed on a booking.
type Passenger struct {
	FirstName      string `json:"firstName" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	DocumentNumber string `json:"documentNumber" validate:"required"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	BirthDate      string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Nationality    string `json:"nationality,omitempty"`
}

// Booking is a purchase of seats on a flight. PassengerCount always equals
// len(Passengers).
type Booking struct {
	ID             uint                           `json:"id" gorm:"primaryKey"`
	UserID         uint                           `json:"userId" gorm:"not null;index"`
	FlightID       uint                           `json:"flightId" gorm:"not null;index"`
	Passengers     datatypes.JSONSlice[Passenger] `json:"passengers" gorm:"not null"`
	PassengerCount int                            `json:"passengerCount" gorm:"not null"`
	TotalPrice     decimal.Decimal                `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	PurchaseDate   time.Time                      `json:"purchaseDate" gorm:"not null"`
	Status         BookingStatus                  `json:"status" gorm:"type:varchar(10);not null;default:'Activo';index"`
	CreatedAt      time.Time                      `json:"createdAt"`
	UpdatedAt      time.Time                      `json:"updatedAt"`

	Flight *Flight `json:"flight,omitempty" gorm:"foreignKey:FlightID"`
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

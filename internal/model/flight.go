package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlightStatus is the lifecycle state of a flight.
type FlightStatus string

const (
	FlightActive   FlightStatus = "Activo"
	FlightInactive FlightStatus = "Inactivo"
)

// Flight is a scheduled flight. Airline is the display label of the owning
// airline; Date and the times are naive local values.
type Flight struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	Airline       string          `json:"airline" gorm:"size:255;not null;index"`
	Origin        string          `json:"origin" gorm:"size:255;not null;index"`
	Destination   string          `json:"destination" gorm:"size:255;not null;index"`
	Date          string          `json:"date" gorm:"type:varchar(10);not null;index"`
	DepartureTime string          `json:"departureTime" gorm:"type:varchar(8);not null"`
	ArrivalTime   string          `json:"arrivalTime" gorm:"type:varchar(8);not null"`
	Capacity      int             `json:"capacity" gorm:"not null"`
	BasePrice     decimal.Decimal `json:"basePrice" gorm:"type:decimal(10,2);not null"`
	Status        FlightStatus    `json:"status" gorm:"type:varchar(10);not null;default:'Activo';index"`
	CreatedBy     *uint           `json:"createdBy" gorm:"index"`
	ImageURL      *string         `json:"imageUrl"`
	IsFeatured    bool            `json:"isFeatured" gorm:"not null;default:false"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

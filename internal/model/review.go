package model

import "time"

// Review is a user's rating of an airline, keyed by (UserID, Airline).
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"not null;uniqueIndex:idx_review_user_airline"`
	Airline   string    `json:"airline" gorm:"size:255;not null;uniqueIndex:idx_review_user_airline;index"`
	Rating    int       `json:"rating" gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"-" gorm:"foreignKey:UserID"`
}

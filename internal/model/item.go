package model

import "time"

// Item is a donatable good with separate stock counts for new and used units.
type Item struct {
	ID           int64     `json:"id"`
	Category     string    `json:"category"`
	Name         string    `json:"name"`
	QuantityNew  int       `json:"quantityNew"`
	QuantityUsed int       `json:"quantityUsed"`
	ValueNew     float64   `json:"valueNew"`
	ValueUsed    float64   `json:"valueUsed"`
	Version      int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UncategorizedCategory is assigned to items first seen in an incoming donation.
const UncategorizedCategory = "TBD"

// Item conditions.
const (
	ConditionNew  = "New"
	ConditionUsed = "Used"
)

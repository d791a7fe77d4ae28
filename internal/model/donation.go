package model

import "time"

// Donation is a single incoming or outgoing transaction.
type Donation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Direction string    `json:"direction"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// Donation directions.
const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// DonationDetail is one line of a donation: how many new and used units of
// an item it moved.
type DonationDetail struct {
	DonationID   int64 `json:"donationId"`
	ItemID       int64 `json:"itemId"`
	NewQuantity  int   `json:"newQuantity"`
	UsedQuantity int   `json:"usedQuantity"`

	// Joined fields (not always populated).
	ItemName  string  `json:"itemName,omitempty"`
	ValueNew  float64 `json:"valueNew,omitempty"`
	ValueUsed float64 `json:"valueUsed,omitempty"`
}

// OutgoingStats records who an outgoing donation served.
type OutgoingStats struct {
	DonationID   int64 `json:"donationId"`
	NumberServed int   `json:"numberServed"`
	WhiteNum     int   `json:"whiteNum"`
	LatinoNum    int   `json:"latinoNum"`
	BlackNum     int   `json:"blackNum"`
	NativeNum    int   `json:"nativeNum"`
	AsianNum     int   `json:"asianNum"`
	OtherNum     int   `json:"otherNum"`
}

// DonationSummary is a donation as shown in the admin listing.
type DonationSummary struct {
	ID           int64          `json:"id"`
	Date         time.Time      `json:"date"`
	Direction    string         `json:"direction"`
	Organization string         `json:"organization"`
	Type         string         `json:"type"`
	Total        float64        `json:"total"`
	Items        int            `json:"items"`
	Details      []SummaryEntry `json:"details"`
}

// SummaryEntry is one condition (new or used) of one donation line.
type SummaryEntry struct {
	ItemID   int64   `json:"itemId"`
	Item     string  `json:"item"`
	Status   string  `json:"status"`
	Value    float64 `json:"value"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// IndividualDonor labels donations from users without an organization.
const IndividualDonor = "Individual"

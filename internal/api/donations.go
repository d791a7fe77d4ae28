package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/donations/internal/donation"
	"github.com/erazemk/donations/internal/model"
	"github.com/erazemk/donations/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// DonationsHandler handles donation endpoints.
type DonationsHandler struct {
	DB      *sql.DB
	Service *donation.Service
}

type donationLineRequest struct {
	ItemID       int64       `json:"itemId" validate:"min=0"`
	Category     string      `json:"category"`
	Item         string      `json:"item" validate:"required_without=ItemID"`
	NewQuantity  json.Number `json:"newQuantity"`
	UsedQuantity json.Number `json:"usedQuantity"`
}

type outgoingRequest struct {
	UserID          int64                 `json:"userId" validate:"required_without=Email,min=0"`
	Email           string                `json:"email" validate:"omitempty,email"`
	Date            string                `json:"date"`
	DonationDetails []donationLineRequest `json:"donationDetails" validate:"required,min=1,dive"`
	NumberServed    json.Number           `json:"numberServed"`
	WhiteNum        json.Number           `json:"whiteNum"`
	LatinoNum       json.Number           `json:"latinoNum"`
	BlackNum        json.Number           `json:"blackNum"`
	NativeNum       json.Number           `json:"nativeNum"`
	AsianNum        json.Number           `json:"asianNum"`
	OtherNum        json.Number           `json:"otherNum"`
}

type productRequest struct {
	Name     string      `json:"name" validate:"required"`
	Quantity json.Number `json:"quantity"`
}

type incomingRequest struct {
	UserID   int64            `json:"userId" validate:"required_without=Email,min=0"`
	Email    string           `json:"email" validate:"omitempty,email"`
	Date     string           `json:"date"`
	Products []productRequest `json:"products" validate:"required,min=1,dive"`
}

type donationItemDetail struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	QuantityUsed int     `json:"quantityUsed"`
	QuantityNew  int     `json:"quantityNew"`
	ValueUsed    float64 `json:"valueUsed"`
	ValueNew     float64 `json:"valueNew"`
}

type donationListResponse struct {
	Donations   []model.DonationSummary `json:"donations"`
	TotalNumber int                     `json:"totalNumber"`
}

func userReference(id int64, email string) donation.UserReference {
	if id > 0 {
		return donation.UserByID{ID: id}
	}
	return donation.UserByEmail{Email: email}
}

// parseDate accepts RFC 3339 timestamps and plain dates. Empty means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, &donation.ValidationError{Field: "date", Message: fmt.Sprintf("%q is not a date", s)}
}

func (req *outgoingRequest) toDomain() (donation.OutgoingRequest, error) {
	var out donation.OutgoingRequest
	var err error

	out.User = userReference(req.UserID, req.Email)
	if out.Date, err = parseDate(req.Date); err != nil {
		return out, err
	}

	for i, l := range req.DonationDetails {
		field := fmt.Sprintf("donationDetails[%d]", i)
		line := donation.LineRequest{Item: donation.ItemByID{ID: l.ItemID}}
		if l.ItemID == 0 {
			line.Item = donation.ItemByCategoryAndName{Category: l.Category, Name: l.Item}
		}
		if line.NewQuantity, err = donation.ParseCount(field+".newQuantity", l.NewQuantity); err != nil {
			return out, err
		}
		if line.UsedQuantity, err = donation.ParseCount(field+".usedQuantity", l.UsedQuantity); err != nil {
			return out, err
		}
		out.Lines = append(out.Lines, line)
	}

	if out.NumberServed, err = donation.ParseCount("numberServed", req.NumberServed); err != nil {
		return out, err
	}
	counts := []struct {
		field string
		n     json.Number
		dst   *int
	}{
		{"whiteNum", req.WhiteNum, &out.Demographics.White},
		{"latinoNum", req.LatinoNum, &out.Demographics.Latino},
		{"blackNum", req.BlackNum, &out.Demographics.Black},
		{"nativeNum", req.NativeNum, &out.Demographics.Native},
		{"asianNum", req.AsianNum, &out.Demographics.Asian},
		{"otherNum", req.OtherNum, &out.Demographics.Other},
	}
	for _, c := range counts {
		if *c.dst, err = donation.ParseCount(c.field, c.n); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (req *incomingRequest) toDomain() (donation.IncomingRequest, error) {
	var in donation.IncomingRequest
	var err error

	in.User = userReference(req.UserID, req.Email)
	if in.Date, err = parseDate(req.Date); err != nil {
		return in, err
	}
	for i, p := range req.Products {
		qty, err := donation.ParseCount(fmt.Sprintf("products[%d].quantity", i), p.Quantity)
		if err != nil {
			return in, err
		}
		in.Products = append(in.Products, donation.Product{Name: p.Name, Quantity: qty})
	}
	return in, nil
}

// CreateOutgoing handles POST /donation/v1/outgoing.
func (h *DonationsHandler) CreateOutgoing(w http.ResponseWriter, r *http.Request) {
	var req outgoingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stats, err := h.Service.CreateOutgoing(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, r, http.StatusOK, stats)
}

// UpdateOutgoing handles PUT /donation/v1/outgoing/{donationId}.
func (h *DonationsHandler) UpdateOutgoing(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "donationId")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req outgoingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if _, err := h.Service.UpdateOutgoing(r.Context(), id, in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "donation updated"})
}

// DeleteOutgoing handles DELETE /donation/v1/outgoing/{donationId}.
func (h *DonationsHandler) DeleteOutgoing(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "donationId")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.DeleteOutgoing(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "donation deleted"})
}

// CreateIncoming handles POST /donation/v1/incoming.
func (h *DonationsHandler) CreateIncoming(w http.ResponseWriter, r *http.Request) {
	var req incomingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.toDomain()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	d, err := h.Service.CreateIncoming(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, r, http.StatusCreated, d)
}

// Details handles GET /donation/v1/details/{donationId}.
func (h *DonationsHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "donationId")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	d, err := store.GetDonation(r.Context(), h.DB, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if d == nil {
		jsonError(w, r, http.StatusNotFound, "donation not found")
		return
	}

	details, err := store.ListDonationDetails(r.Context(), h.DB, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]donationItemDetail, 0, len(details))
	for _, dd := range details {
		out = append(out, donationItemDetail{
			ID:           dd.ItemID,
			Name:         dd.ItemName,
			QuantityUsed: dd.UsedQuantity,
			QuantityNew:  dd.NewQuantity,
			ValueUsed:    dd.ValueUsed,
			ValueNew:     dd.ValueNew,
		})
	}
	jsonResponse(w, r, http.StatusOK, out)
}

// Demographics handles GET /donation/v1/demographics/{donationId}.
func (h *DonationsHandler) Demographics(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "donationId")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := store.GetOutgoingStats(r.Context(), h.DB, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if stats == nil {
		jsonError(w, r, http.StatusNotFound, "no demographics recorded for this donation")
		return
	}
	jsonResponse(w, r, http.StatusOK, stats)
}

// List handles GET /donation/v1.
func (h *DonationsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"), 1)
	if err != nil || page < 1 {
		jsonError(w, r, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	pageSize, err := queryInt(q.Get("pageSize"), defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > maxPageSize {
		jsonError(w, r, http.StatusBadRequest, fmt.Sprintf("pageSize must be between 1 and %d", maxPageSize))
		return
	}
	direction := q.Get("direction")
	if direction != "" && direction != model.DirectionIncoming && direction != model.DirectionOutgoing {
		jsonError(w, r, http.StatusBadRequest, "direction must be incoming or outgoing")
		return
	}

	summaries, err := store.ListDonationSummaries(r.Context(), h.DB, direction, page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	total, err := store.CountDonations(r.Context(), h.DB, direction)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []model.DonationSummary{}
	}

	zerolog.Ctx(r.Context()).Debug().Int("page", page).Int("returned", len(summaries)).Msg("listed donations")
	jsonResponse(w, r, http.StatusOK, donationListResponse{Donations: summaries, TotalNumber: total})
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

package handler

import (
	"time"

	"emargement/internal/registry/models"
)

type AddGuestRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type GuestResponse struct {
	RegistrationID   string     `json:"registration_id"`
	Contact          string     `json:"contact"`
	Role             string     `json:"role,omitempty"`
	EventName        string     `json:"event_name,omitempty"`
	CreatedAt        string     `json:"created_at,omitempty"`
	Manager          string     `json:"manager,omitempty"`
	Email            string     `json:"email,omitempty"`
	ContactCreatedAt string     `json:"contact_created_at,omitempty"`
	Present          bool       `json:"present"`
	PresentAt        *time.Time `json:"present_at,omitempty"`
	PresentAtDisplay string     `json:"present_at_display,omitempty"`
}

type EventSummary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Date      string       `json:"date"`
	CreatedAt time.Time    `json:"created_at"`
	Active    bool         `json:"active"`
	Stats     models.Stats `json:"stats"`
}

type EventResponse struct {
	EventSummary
	Attendees []GuestResponse `json:"attendees"`
}

type EventListResponse struct {
	Events []EventSummary `json:"events"`
}

type GuestListResponse struct {
	Guests []GuestResponse `json:"guests"`
	Total  int             `json:"total"`
}

func toGuestResponse(g models.Guest, loc *time.Location) GuestResponse {
	resp := GuestResponse{
		RegistrationID:   g.RegistrationID,
		Contact:          g.Contact,
		Role:             g.Role,
		EventName:        g.EventName,
		CreatedAt:        g.CreatedAt,
		Manager:          g.Manager,
		Email:            g.Email,
		ContactCreatedAt: g.ContactCreatedAt,
		Present:          g.Present,
		PresentAt:        g.PresentAt,
	}
	if g.PresentAt != nil {
		resp.PresentAtDisplay = models.FormatDisplayTime(*g.PresentAt, loc)
	}
	return resp
}

func toGuestResponses(guests []models.Guest, loc *time.Location) []GuestResponse {
	out := make([]GuestResponse, 0, len(guests))
	for _, g := range guests {
		out = append(out, toGuestResponse(g, loc))
	}
	return out
}

func toEventSummary(ev *models.Event, activeID string) EventSummary {
	return EventSummary{
		ID:        ev.ID,
		Name:      ev.Name,
		Date:      ev.Date,
		CreatedAt: ev.CreatedAt,
		Active:    ev.ID == activeID,
		Stats:     ev.Stats(),
	}
}

func toEventResponse(ev *models.Event, activeID string, loc *time.Location) EventResponse {
	return EventResponse{
		EventSummary: toEventSummary(ev, activeID),
		Attendees:    toGuestResponses(ev.Attendees, loc),
	}
}

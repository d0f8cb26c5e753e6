package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestClient_ListEvents_Defaults(t *testing.T) {
	client, calls := newTestClient(t, respondJSON(http.StatusOK, `{
		"value": [
			{
				"id": "ev1",
				"subject": "Sprint review",
				"start": {"dateTime": "2026-08-24T09:00:00.0000000", "timeZone": "Europe/Warsaw"},
				"end": {"dateTime": "2026-08-24T10:00:00.0000000", "timeZone": "Europe/Warsaw"},
				"isOrganizer": true
			}
		]
	}`))

	events, err := client.ListEvents(context.Background(), ListEventsOptions{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Subject != "Sprint review" {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Start == nil || events[0].Start.TimeZone != "Europe/Warsaw" {
		t.Errorf("Start = %+v, want the zone preserved", events[0].Start)
	}

	call := (*calls)[0]
	if call.Path != "/users/owner@example.com/events" {
		t.Errorf("path = %q", call.Path)
	}
	if got := call.Query.Get("$orderby"); got != "start/dateTime" {
		t.Errorf("$orderby = %q, want start/dateTime", got)
	}
	if got := call.Query.Get("$top"); got != "100" {
		t.Errorf("$top = %q, want the client default", got)
	}
	if call.Query.Has("startDateTime") || call.Query.Has("endDateTime") {
		t.Error("unwindowed listing sent calendarView parameters")
	}
}

func TestClient_ListEvents_CalendarViewWindow(t *testing.T) {
	client, calls := newTestClient(t, respondJSON(http.StatusOK, `{"value":[]}`))

	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Fatal(err)
	}
	opts := ListEventsOptions{
		From: time.Date(2026, 8, 24, 0, 0, 0, 0, warsaw),
		To:   time.Date(2026, 8, 31, 0, 0, 0, 0, warsaw),
		Top:  10,
	}
	if _, err := client.ListEvents(context.Background(), opts); err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}

	call := (*calls)[0]
	if call.Path != "/users/owner@example.com/calendarView" {
		t.Errorf("path = %q, want the calendarView", call.Path)
	}
	// Warsaw is UTC+2 in August
	if got := call.Query.Get("startDateTime"); got != "2026-08-23T22:00:00Z" {
		t.Errorf("startDateTime = %q, want the window start in UTC", got)
	}
	if got := call.Query.Get("endDateTime"); got != "2026-08-30T22:00:00Z" {
		t.Errorf("endDateTime = %q, want the window end in UTC", got)
	}
	if got := call.Query.Get("$top"); got != "10" {
		t.Errorf("$top = %q, want 10", got)
	}
}

func TestClient_ListEvents_InvalidWindow(t *testing.T) {
	client, calls := newTestClient(t, respondJSON(http.StatusOK, `{"value":[]}`))

	from := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	_, err := client.ListEvents(context.Background(), ListEventsOptions{From: from, To: to})
	if err == nil {
		t.Error("ListEvents() should reject an end before the start")
	}
	if _, err := client.ListEvents(context.Background(), ListEventsOptions{From: from, To: from}); err == nil {
		t.Error("ListEvents() should reject an empty window")
	}
	if len(*calls) != 0 {
		t.Errorf("invalid window reached the network: %d requests", len(*calls))
	}
}

func TestClient_CreateEvent(t *testing.T) {
	client, calls := newTestClient(t, respondJSON(http.StatusCreated, `{
		"id": "ev-created",
		"subject": "Project kickoff",
		"webLink": "https://outlook.office365.com/calendar/item/ev-created"
	}`))

	ev := NewEvent{
		Subject: "Project kickoff",
		Body:    &ItemBody{ContentType: "HTML", Content: "<p>Agenda attached.</p>"},
		Start:   DateTimeTimeZone{DateTime: "2026-09-01T14:00:00", TimeZone: "Europe/Warsaw"},
		End:     DateTimeTimeZone{DateTime: "2026-09-01T15:00:00", TimeZone: "Europe/Warsaw"},
		Location: &Location{
			DisplayName: "Room 4B",
		},
		Attendees: []Attendee{
			{Type: "required", EmailAddress: EmailAddress{Address: "dev@example.com"}},
		},
	}

	created, err := client.CreateEvent(context.Background(), ev)
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if created.ID != "ev-created" {
		t.Errorf("created ID = %q", created.ID)
	}

	call := (*calls)[0]
	if call.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", call.Method)
	}
	if call.Path != "/users/owner@example.com/events" {
		t.Errorf("path = %q", call.Path)
	}

	var sent NewEvent
	if err := json.Unmarshal(call.Body, &sent); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if sent.Start.DateTime != "2026-09-01T14:00:00" || sent.Start.TimeZone != "Europe/Warsaw" {
		t.Errorf("start = %+v, want wall time plus zone", sent.Start)
	}
	if len(sent.Attendees) != 1 || sent.Attendees[0].EmailAddress.Address != "dev@example.com" {
		t.Errorf("attendees = %+v", sent.Attendees)
	}
}

func TestClient_RespondEvent(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantPath string
	}{
		{name: "accept", response: ResponseAccept, wantPath: "/users/owner@example.com/events/ev1/accept"},
		{name: "decline", response: ResponseDecline, wantPath: "/users/owner@example.com/events/ev1/decline"},
		{name: "tentative", response: ResponseTentative, wantPath: "/users/owner@example.com/events/ev1/tentativelyAccept"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			})

			if err := client.RespondEvent(context.Background(), "ev1", tt.response, "See you there."); err != nil {
				t.Fatalf("RespondEvent() error = %v", err)
			}

			call := (*calls)[0]
			if call.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", call.Path, tt.wantPath)
			}
			var body eventResponseRequest
			if err := json.Unmarshal(call.Body, &body); err != nil {
				t.Fatalf("request body: %v", err)
			}
			if body.Comment != "See you there." {
				t.Errorf("comment = %q", body.Comment)
			}
			if !body.SendResponse {
				t.Error("sendResponse = false, want true")
			}
		})
	}
}

func TestClient_RespondEvent_InvalidResponse(t *testing.T) {
	client, calls := newTestClient(t, respondJSON(http.StatusOK, `{}`))

	err := client.RespondEvent(context.Background(), "ev1", "maybe", "")
	if err == nil {
		t.Fatal("RespondEvent() should reject an unknown response")
	}
	if !strings.Contains(err.Error(), `"maybe"`) {
		t.Errorf("error %q does not name the bad response", err)
	}
	if len(*calls) != 0 {
		t.Errorf("invalid response reached the network: %d requests", len(*calls))
	}
}

func TestClient_CancelEvent(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	if err := client.CancelEvent(context.Background(), "ev1", "Room flooded, moving online."); err != nil {
		t.Fatalf("CancelEvent() error = %v", err)
	}

	call := (*calls)[0]
	if call.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", call.Method)
	}
	if call.Path != "/users/owner@example.com/events/ev1/cancel" {
		t.Errorf("path = %q", call.Path)
	}
	var body cancelRequest
	if err := json.Unmarshal(call.Body, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if body.Comment != "Room flooded, moving online." {
		t.Errorf("comment = %q", body.Comment)
	}
}

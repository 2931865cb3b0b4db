package eventing

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"
)

// Envelope wraps an event payload with delivery metadata.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id"`
	ClubID        string          `json:"club_id"`
	MatchID       string          `json:"match_id"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// Meta provides envelope overrides.
type Meta struct {
	EventID       string
	OccurredAt    time.Time
	CorrelationID string
	ClubID        string
	MatchID       string
	SchemaVersion int
}

// BuildEnvelope constructs an envelope from an event payload and metadata.
// MatchID and OccurredAt default to same-named fields of the payload when
// present, so fee events carry their match scope without extra plumbing.
func BuildEnvelope(event any, meta Meta) (Envelope, error) {
	if event == nil {
		return Envelope{}, errors.New("eventing: nil event")
	}

	eventType := reflect.TypeOf(event)
	for eventType.Kind() == reflect.Ptr {
		eventType = eventType.Elem()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}

	scopeMatchID, scopeOccurredAt := payloadScope(event)
	matchID := meta.MatchID
	if matchID == "" {
		matchID = scopeMatchID
	}
	occurredAt := meta.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = scopeOccurredAt
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	eventID := meta.EventID
	if eventID == "" {
		eventID = newEventID()
	}

	correlationID := meta.CorrelationID
	if correlationID == "" {
		correlationID = eventID
	}

	schemaVersion := meta.SchemaVersion
	if schemaVersion == 0 {
		schemaVersion = 1
	}

	return Envelope{
		EventID:       eventID,
		EventType:     eventType.String(),
		OccurredAt:    occurredAt.UTC(),
		CorrelationID: correlationID,
		ClubID:        meta.ClubID,
		MatchID:       matchID,
		SchemaVersion: schemaVersion,
		Payload:       payload,
	}, nil
}

// payloadScope pulls MatchID and OccurredAt off the payload struct when the
// fields exist. Fee and stats events all carry both, so envelopes stay
// queryable without each publisher repeating the metadata.
func payloadScope(event any) (string, time.Time) {
	value := reflect.ValueOf(event)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return "", time.Time{}
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return "", time.Time{}
	}

	var matchID string
	if field := value.FieldByName("MatchID"); field.IsValid() && field.Kind() == reflect.String {
		matchID = field.String()
	}
	var occurredAt time.Time
	if field := value.FieldByName("OccurredAt"); field.IsValid() {
		if t, ok := field.Interface().(time.Time); ok {
			occurredAt = t
		}
	}
	return matchID, occurredAt
}

package domain

import dErrors "xainik/pkg/domain-errors"

// EventType is the engagement signal recorded against a referral.
type EventType string

// Event types the recorder accepts from clients.
const (
	EventLinkOpened   EventType = "LINK_OPENED"
	EventPitchViewed  EventType = "PITCH_VIEWED"
	EventCallClicked  EventType = "CALL_CLICKED"
	EventEmailClicked EventType = "EMAIL_CLICKED"
)

// Engagement-depth markers. Written by other producers in the wider platform;
// read paths recognize them but the recorder never creates them.
const (
	EventScroll25 EventType = "SCROLL_25"
	EventScroll50 EventType = "SCROLL_50"
	EventScroll75 EventType = "SCROLL_75"
	EventTime30s  EventType = "TIME_30_SECONDS"
)

var recordableTypes = map[EventType]struct{}{
	EventLinkOpened:   {},
	EventPitchViewed:  {},
	EventCallClicked:  {},
	EventEmailClicked: {},
}

// ParseEventType validates a client-supplied event type against the set the
// recorder is allowed to create.
func ParseEventType(s string) (EventType, error) {
	et := EventType(s)
	if _, ok := recordableTypes[et]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown event type: "+s)
	}
	return et, nil
}

// Recordable reports whether the recorder may create events of this type.
func (e EventType) Recordable() bool {
	_, ok := recordableTypes[e]
	return ok
}

// Conversion reports whether this event counts as a conversion for
// referrer ranking (a click-through to contact the veteran).
func (e EventType) Conversion() bool {
	return e == EventCallClicked || e == EventEmailClicked
}

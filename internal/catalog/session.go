package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ShowTimeLayout is the canonical wire format for session showtimes.
// Showtimes are local wall-clock values: theaters publish local times and
// the dataset never crosses timezones, so no zone is recorded.
const ShowTimeLayout = "2006-01-02 15:04"

// showTimeParseLayouts are the formats accepted when decoding stored data.
var showTimeParseLayouts = []string{
	ShowTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ShowTime is a timezone-naive local timestamp with minute precision.
type ShowTime struct {
	t time.Time
}

// NewShowTime builds a ShowTime from a time value, truncating to the minute
// and discarding any location.
func NewShowTime(t time.Time) ShowTime {
	return ShowTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)}
}

// ParseShowTime parses a showtime string in any accepted layout.
func ParseShowTime(value string) (ShowTime, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ShowTime{}, fmt.Errorf("empty showtime")
	}
	for _, layout := range showTimeParseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return NewShowTime(t), nil
		}
	}
	return ShowTime{}, fmt.Errorf("unrecognized showtime %q", value)
}

// IsZero reports whether the showtime is unset.
func (s ShowTime) IsZero() bool { return s.t.IsZero() }

// Before reports whether s is strictly earlier than other.
func (s ShowTime) Before(other ShowTime) bool { return s.t.Before(other.t) }

// Equal reports whether two showtimes name the same minute.
func (s ShowTime) Equal(other ShowTime) bool { return s.t.Equal(other.t) }

// Time returns the underlying time value.
func (s ShowTime) Time() time.Time { return s.t }

// Window returns the month window label the showtime falls into, e.g. "2026-03".
func (s ShowTime) Window() string { return s.t.Format("2006-01") }

// String renders the showtime in the canonical layout.
func (s ShowTime) String() string {
	if s.t.IsZero() {
		return ""
	}
	return s.t.Format(ShowTimeLayout)
}

// MarshalJSON encodes the showtime as a canonical-layout string.
func (s ShowTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a showtime from any accepted layout.
func (s *ShowTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*s = ShowTime{}
		return nil
	}
	parsed, err := ParseShowTime(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Version tags the audio presentation of a screening.
type Version string

const (
	// VersionUnknown means the listing did not state the audio version.
	VersionUnknown Version = ""
	// VersionOriginal covers original-audio screenings, subtitled or not.
	VersionOriginal Version = "original"
	// VersionDubbed covers screenings dubbed into the local language.
	VersionDubbed Version = "dubbed"
)

// UnknownLocation is the sentinel venue label for listings without one.
const UnknownLocation = "Unknown"

// Session is one scheduled screening of a film. Sessions are value types
// owned by their film; (ShowTime, Location) is the dedup key.
type Session struct {
	ShowTime   ShowTime `json:"timestamp"`
	Location   string   `json:"location"`
	TicketsURL string   `json:"url_tickets"`
	InfoURL    string   `json:"url_info"`
	Version    Version  `json:"version,omitempty"`
}

// Key returns the dedup key for a session within its owning film.
func (s Session) Key() string {
	return s.ShowTime.String() + "|" + s.Location
}

// SortSessions orders sessions by showtime, then location.
func SortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].ShowTime.Equal(sessions[j].ShowTime) {
			return sessions[i].ShowTime.Before(sessions[j].ShowTime)
		}
		return sessions[i].Location < sessions[j].Location
	})
}

package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the formats the API uses for created_at and
// date_ts, depending on whether the value went through a serializer.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp decodes the API's loosely formatted date strings. Empty and
// null values decode to the zero time.
type timestamp time.Time

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding timestamp %s: %w", data, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = timestamp(time.Time{})
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// emailEntry is one campaign recipient. The list endpoint returns full
// objects ({"email": "..."}), create returns bare strings.
type emailEntry string

func (e *emailEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = emailEntry(s)
		return nil
	}

	var obj struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding email entry %s: %w", data, err)
	}
	*e = emailEntry(obj.Email)
	return nil
}

func entriesToStrings(entries []emailEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = string(e)
	}
	return out
}

func timeOf(t timestamp) time.Time {
	return time.Time(t)
}

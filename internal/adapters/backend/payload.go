package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The upstream backend is loose about field shapes: identifiers arrive as
// strings, numbers, [id, name] pairs, or {id, name} objects, and timestamps
// as RFC 3339 strings or epoch seconds. All of that tolerance is centralized
// in the payload types below; domain types never see raw JSON.

// flexID decodes an identifier that may be a JSON string, number, or null.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	// Malformed identifier: treat as absent rather than failing the record.
	*f = ""
	return nil
}

// identified decodes a reference that may be [id, name], {id, name}, a bare
// scalar id, or null.
type identified struct {
	ID   string
	Name string
}

func (v *identified) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = identified{}
		return nil
	}

	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) > 0 {
			var id flexID
			_ = id.UnmarshalJSON(pair[0])
			v.ID = string(id)
		}
		if len(pair) > 1 {
			_ = json.Unmarshal(pair[1], &v.Name)
		}
		return nil
	}

	var obj struct {
		ID   flexID `json:"id"`
		Name string `json:"name"`
	}
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &obj); err == nil {
			v.ID = string(obj.ID)
			v.Name = obj.Name
			return nil
		}
	}

	var bare flexID
	_ = bare.UnmarshalJSON(data)
	v.ID = string(bare)
	return nil
}

// flexTime decodes RFC 3339 strings or numeric epoch seconds; anything else
// decodes to the zero time.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*t = flexTime(time.Time{})
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := time.Parse(time.RFC3339, s)
		if perr != nil {
			parsed = time.Time{}
		}
		*t = flexTime(parsed)
		return nil
	}
	if epoch, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		*t = flexTime(time.Unix(epoch, 0).UTC())
		return nil
	}
	if epoch, err := strconv.ParseFloat(trimmed, 64); err == nil {
		*t = flexTime(time.Unix(int64(epoch), 0).UTC())
		return nil
	}
	*t = flexTime(time.Time{})
	return nil
}

func (t flexTime) Time() time.Time {
	return time.Time(t)
}

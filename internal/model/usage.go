// Package model defines the credit usage records exchanged with the backend.
package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Field is a loosely typed JSON value. The backend reports the same quantity
// as a number, a numeric string, or a string with units attached ("500 ACUs").
// The raw bytes are kept and coerced on demand.
type Field struct {
	raw json.RawMessage
}

// StringField returns a Field holding a JSON string.
func StringField(s string) Field {
	b, _ := json.Marshal(s)
	return Field{raw: b}
}

// NumberField returns a Field holding a JSON number.
func NumberField(v float64) Field {
	return Field{raw: json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))}
}

// UnmarshalJSON implements json.Unmarshaler. JSON null leaves the field absent.
func (f *Field) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.raw = nil
		return nil
	}
	f.raw = append(f.raw[:0], b...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Field) MarshalJSON() ([]byte, error) {
	if len(f.raw) == 0 {
		return []byte("null"), nil
	}
	return f.raw, nil
}

// Present reports whether the value was present and non-null.
func (f Field) Present() bool {
	return len(f.raw) > 0
}

// Text coerces the value to a string: strings are unquoted, numbers and
// booleans are returned as written. Absent values yield "".
func (f Field) Text() string {
	if len(f.raw) == 0 {
		return ""
	}
	if f.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(f.raw, &s); err == nil {
			return s
		}
	}
	return string(f.raw)
}

// Snapshot is the single current-state record served by the "latest" endpoint.
// Deployments differ: some report available_acus, others credit_used and
// credit_limit.
type Snapshot struct {
	AvailableACUs Field `json:"available_acus"`
	CreditUsed    Field `json:"credit_used"`
	CreditLimit   Field `json:"credit_limit"`
	Timestamp     Field `json:"timestamp"`

	keys int // number of keys in the decoded object, known or not
}

// UnmarshalJSON implements json.Unmarshaler and records how many keys the
// object carried, so {} can be told apart from an object with unknown keys.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}

	type plain Snapshot
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*s = Snapshot(p)
	s.keys = len(keys)
	return nil
}

// MarshalJSON emits only the fields that are present.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]Field, 4)
	if s.AvailableACUs.Present() {
		out["available_acus"] = s.AvailableACUs
	}
	if s.CreditUsed.Present() {
		out["credit_used"] = s.CreditUsed
	}
	if s.CreditLimit.Present() {
		out["credit_limit"] = s.CreditLimit
	}
	if s.Timestamp.Present() {
		out["timestamp"] = s.Timestamp
	}
	return json.Marshal(out)
}

// Empty reports whether the snapshot is absent or carries no data at all.
// The backend answers {} when it has nothing recorded yet.
func (s *Snapshot) Empty() bool {
	if s == nil {
		return true
	}
	return s.keys == 0 &&
		!s.AvailableACUs.Present() &&
		!s.CreditUsed.Present() &&
		!s.CreditLimit.Present() &&
		!s.Timestamp.Present()
}

// HistoryRecord is one historical usage entry, used for both the history
// table and the chart series.
type HistoryRecord struct {
	SessionName Field `json:"session_name"`
	Created     Field `json:"created_at"`
	Timestamp   Field `json:"timestamp"`
	ACUsUsed    Field `json:"acus_used"`
	CreditUsed  Field `json:"credit_used"`
	CreditLimit Field `json:"credit_limit"`
}

// CreatedAt returns created_at, falling back to timestamp.
func (r HistoryRecord) CreatedAt() Field {
	if r.Created.Present() {
		return r.Created
	}
	return r.Timestamp
}

// Used returns acus_used, falling back to credit_used.
func (r HistoryRecord) Used() Field {
	if r.ACUsUsed.Present() {
		return r.ACUsUsed
	}
	return r.CreditUsed
}

// Label returns the session name, falling back to the creation time.
func (r HistoryRecord) Label() Field {
	if r.SessionName.Present() {
		return r.SessionName
	}
	return r.CreatedAt()
}

// Limit returns credit_limit.
func (r HistoryRecord) Limit() Field {
	return r.CreditLimit
}

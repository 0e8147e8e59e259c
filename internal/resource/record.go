package resource

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the ISO-8601 form timestamps are rendered in
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one stored document of any kind.
// ID and CreatedAt are assigned by the Manager and never change afterwards.
type Record struct {
	ID        string
	Fields    map[string]string
	CreatedAt time.Time

	// TimestampField is the JSON key CreatedAt is rendered under
	// ("createdAt" or "subscribedAt"); it is not persisted.
	TimestampField string
}

// Get returns a field value, empty when absent
func (r Record) Get(name string) string {
	return r.Fields[name]
}

// Clone returns a copy whose Fields map can be mutated independently
func (r Record) Clone() Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	r.Fields = fields
	return r
}

func (r Record) timestampKey() string {
	if r.TimestampField == "" {
		return "createdAt"
	}
	return r.TimestampField
}

// MarshalJSON renders the record as {"_id": ..., <fields>, <timestamp>: ...}
func (r Record) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		doc[k] = v
	}
	doc["_id"] = r.ID
	doc[r.timestampKey()] = r.CreatedAt.UTC().Format(TimestampLayout)
	return json.Marshal(doc)
}

// UnmarshalJSON is the inverse of MarshalJSON; it accepts either timestamp key.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := Record{Fields: make(map[string]string)}
	for k, v := range doc {
		s, _ := v.(string)
		switch k {
		case "_id":
			out.ID = s
		case "createdAt", "subscribedAt":
			ts, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return err
			}
			out.CreatedAt = ts
			out.TimestampField = k
		default:
			out.Fields[k] = s
		}
	}
	*r = out
	return nil
}

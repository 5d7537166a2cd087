package table

import (
	"encoding/json"
	"time"
)

// Payload is the capability every record type stored in a Table must
// provide: a stable string derived from semantic identity, used as input to
// the id hash. Two payload values are considered the same row iff their
// NaturalKey matches.
type Payload interface {
	NaturalKey() string
}

// Row is a tagged sum of the two kinds a table's map can hold at a given id:
// a live row carrying the payload and its last-write timestamp, or a
// tombstone carrying only the deletion timestamp. The zero value is not a
// valid Row; construct one with newLive or newTombstone.
type Row[T Payload] struct {
	ID        string
	Value     T
	UpdatedAt time.Time // zero value if this is a tombstone
	DeletedAt time.Time // zero value if this is a live row
}

func newLive[T Payload](id string, value T, updatedAt time.Time) Row[T] {
	return Row[T]{ID: id, Value: value, UpdatedAt: updatedAt}
}

func newTombstone[T Payload](id string, deletedAt time.Time) Row[T] {
	return Row[T]{ID: id, DeletedAt: deletedAt}
}

// IsTombstone reports whether r is a deletion marker rather than a live row.
func (r Row[T]) IsTombstone() bool { return !r.DeletedAt.IsZero() }

// wireRow is the flattened on-disk shape: a live row's JSON object is the
// payload's own fields plus "id" and "updated_at"; a tombstone is exactly
// {"id", "deleted_at"}.
type wireRow struct {
	ID        string     `json:"id"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// MarshalJSON flattens the row into one JSON object: live rows merge the
// payload's own fields with "id" and "updated_at"; tombstones emit only
// "id" and "deleted_at".
func (r Row[T]) MarshalJSON() ([]byte, error) {
	if r.IsTombstone() {
		return json.Marshal(wireRow{ID: r.ID, DeletedAt: &r.DeletedAt})
	}

	payloadBytes, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payloadBytes, &fields); err != nil {
		return nil, err
	}
	idBytes, err := json.Marshal(r.ID)
	if err != nil {
		return nil, err
	}
	fields["id"] = idBytes
	updatedBytes, err := json.Marshal(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = updatedBytes
	return json.Marshal(fields)
}

// UnmarshalJSON discriminates live vs. tombstone by the presence of a
// "deleted_at" field: present means tombstone, absent means live. Unknown
// fields in a live row's payload are ignored.
func (r *Row[T]) UnmarshalJSON(data []byte) error {
	var probe struct {
		ID        string     `json:"id"`
		DeletedAt *time.Time `json:"deleted_at"`
		UpdatedAt *time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.DeletedAt != nil {
		*r = newTombstone[T](probe.ID, *probe.DeletedAt)
		return nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	updatedAt := time.Time{}
	if probe.UpdatedAt != nil {
		updatedAt = *probe.UpdatedAt
	}
	*r = newLive(probe.ID, value, updatedAt)
	return nil
}

package store

import (
	"context"
	"sort"
	"time"
)

// Memory is a map-backed Store used in tests and local development.
// It provides the same all-or-nothing transaction guarantee as the Postgres
// store: Begin stages a deep copy of every table, and Commit swaps the
// staged copy back in.
type Memory struct {
	tables map[Kind]map[int64]Fields
	nextID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[Kind]map[int64]Fields),
		nextID: 1,
	}
}

func (m *Memory) table(kind Kind) map[int64]Fields {
	t, ok := m.tables[kind]
	if !ok {
		t = make(map[int64]Fields)
		m.tables[kind] = t
	}
	return t
}

// FindOne implements Store. Ties break on lowest ID.
func (m *Memory) FindOne(_ context.Context, kind Kind, conds ...Cond) (*Record, error) {
	t := m.table(kind)

	ids := make([]int64, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if matches(id, t[id], conds) {
			return &Record{ID: id, Kind: kind, Fields: copyFields(t[id])}, nil
		}
	}
	return nil, nil
}

// Create implements Store.
func (m *Memory) Create(_ context.Context, kind Kind, fields Fields) (int64, error) {
	id := m.nextID
	m.nextID++
	m.table(kind)[id] = copyFields(fields)
	return id, nil
}

// Update implements Store. Unknown IDs are ignored, matching the generic
// store contract of update-by-identifier with no existence reporting.
func (m *Memory) Update(_ context.Context, kind Kind, id int64, fields Fields) error {
	t := m.table(kind)
	existing, ok := t[id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

// Begin implements Beginner.
func (m *Memory) Begin(_ context.Context) (TxStore, error) {
	staged := &Memory{
		tables: make(map[Kind]map[int64]Fields, len(m.tables)),
		nextID: m.nextID,
	}
	for kind, t := range m.tables {
		ct := make(map[int64]Fields, len(t))
		for id, f := range t {
			ct[id] = copyFields(f)
		}
		staged.tables[kind] = ct
	}
	return &memoryTx{base: m, staged: staged}, nil
}

// Count returns the number of records of a kind. Test helper.
func (m *Memory) Count(kind Kind) int {
	return len(m.tables[kind])
}

// Get returns a record by ID, or nil if absent. Test helper.
func (m *Memory) Get(kind Kind, id int64) *Record {
	f, ok := m.tables[kind][id]
	if !ok {
		return nil
	}
	return &Record{ID: id, Kind: kind, Fields: copyFields(f)}
}

// All returns every record of a kind ordered by ID. Test helper.
func (m *Memory) All(kind Kind) []*Record {
	t := m.tables[kind]
	ids := make([]int64, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, &Record{ID: id, Kind: kind, Fields: copyFields(t[id])})
	}
	return out
}

// memoryTx stages mutations on a copied store until Commit.
type memoryTx struct {
	base   *Memory
	staged *Memory
	done   bool
}

func (tx *memoryTx) FindOne(ctx context.Context, kind Kind, conds ...Cond) (*Record, error) {
	return tx.staged.FindOne(ctx, kind, conds...)
}

func (tx *memoryTx) Create(ctx context.Context, kind Kind, fields Fields) (int64, error) {
	return tx.staged.Create(ctx, kind, fields)
}

func (tx *memoryTx) Update(ctx context.Context, kind Kind, id int64, fields Fields) error {
	return tx.staged.Update(ctx, kind, id, fields)
}

func (tx *memoryTx) Commit(context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.base.tables = tx.staged.tables
	tx.base.nextID = tx.staged.nextID
	return nil
}

func (tx *memoryTx) Rollback(context.Context) error {
	tx.done = true
	return nil
}

func matches(id int64, fields Fields, conds []Cond) bool {
	for _, c := range conds {
		// "id" is the record identifier, not a stored field.
		if c.Field == "id" {
			if want, ok := toID(c.Value); !ok || want != id {
				return false
			}
			continue
		}
		if !valueEqual(fields[c.Field], c.Value) {
			return false
		}
	}
	return true
}

func toID(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

// valueEqual compares field values, treating time.Time specially so that
// equal instants compare equal regardless of monotonic clock readings.
func valueEqual(a, b any) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok && bok {
		return at.Equal(bt)
	}
	return a == b
}

func copyFields(f Fields) Fields {
	c := make(Fields, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

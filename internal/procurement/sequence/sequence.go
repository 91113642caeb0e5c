// Package sequence issues year-scoped document numbers of the form
// YYYY-PREFIX-NNN. Everything here is pure: callers load the counters, ask
// for the next number and persist the returned state themselves.
package sequence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Counters maps prefix -> year -> highest sequence number issued.
type Counters map[string]map[string]int

// ID is a parsed document number.
type ID struct {
	Year   string
	Prefix string
	Seq    int
}

var idPattern = regexp.MustCompile(`^(\d{4})-([A-Z]+)-(\d{3,})$`)

// New returns counters with an empty table for each of the given prefixes.
func New(prefixes ...string) Counters {
	c := make(Counters, len(prefixes))
	for _, p := range prefixes {
		c[p] = map[string]int{}
	}
	return c
}

// Clone deep-copies c.
func (c Counters) Clone() Counters {
	out := make(Counters, len(c))
	for prefix, years := range c {
		cp := make(map[string]int, len(years))
		for y, n := range years {
			cp[y] = n
		}
		out[prefix] = cp
	}
	return out
}

// Get returns the highest number issued for prefix in year, 0 if none.
func (c Counters) Get(prefix, year string) int {
	return c[prefix][year]
}

// Next returns the next identifier for (prefix, year) and a copy of c with
// that one cell advanced. c itself is left untouched.
func Next(c Counters, prefix, year string) (string, Counters) {
	next := c.Clone()
	seq := next.Get(prefix, year) + 1
	if next[prefix] == nil {
		next[prefix] = map[string]int{}
	}
	next[prefix][year] = seq
	return Format(year, prefix, seq), next
}

// Format renders YYYY-PREFIX-NNN, padding to at least three digits.
func Format(year, prefix string, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", year, prefix, seq)
}

// Parse splits a document number. Anything not matching the pattern is
// rejected without error; hand-typed values are expected.
func Parse(id string) (ID, bool) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return ID{}, false
	}
	seq, err := strconv.Atoi(m[3])
	if err != nil {
		return ID{}, false
	}
	return ID{Year: m[1], Prefix: m[2], Seq: seq}, true
}

// Identified is anything carrying document numbers.
type Identified interface {
	Identifiers() []string
}

// Recompute rebuilds counters from existing records, keeping the maximum per
// (prefix, year). Unparsable identifiers are skipped. The result always has
// an entry for each of the base prefixes.
func Recompute[T Identified](records []T, base ...string) Counters {
	c := New(base...)
	for _, r := range records {
		for _, raw := range r.Identifiers() {
			id, ok := Parse(raw)
			if !ok {
				continue
			}
			if c[id.Prefix] == nil {
				c[id.Prefix] = map[string]int{}
			}
			if id.Seq > c[id.Prefix][id.Year] {
				c[id.Prefix][id.Year] = id.Seq
			}
		}
	}
	return c
}

// Merge returns the per-cell maximum of a and b.
func Merge(a, b Counters) Counters {
	out := a.Clone()
	for prefix, years := range b {
		if out[prefix] == nil {
			out[prefix] = map[string]int{}
		}
		for y, n := range years {
			if n > out[prefix][y] {
				out[prefix][y] = n
			}
		}
	}
	return out
}

// Value stores counters as a JSON document.
func (c Counters) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads counters back from a JSON column.
func (c *Counters) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*c = Counters{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan counters: %v", value)
	}
	out := Counters{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*c = out
	return nil
}

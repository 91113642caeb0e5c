package sequence

import (
	"fmt"
	"testing"
)

type rec []string

func (r rec) Identifiers() []string { return r }

func TestNextIsGapFree(t *testing.T) {
	c := New("PR")
	seen := map[string]bool{}
	for i := 1; i <= 12; i++ {
		var id string
		id, c = Next(c, "PR", "2025")
		want := fmt.Sprintf("2025-PR-%03d", i)
		if id != want {
			t.Fatalf("call %d: expected %s, got %s", i, want, id)
		}
		if seen[id] {
			t.Fatalf("duplicate identifier %s", id)
		}
		seen[id] = true
	}
}

func TestNextDoesNotMutateInput(t *testing.T) {
	c := New("PO")
	_, next := Next(c, "PO", "2025")
	if c.Get("PO", "2025") != 0 {
		t.Fatalf("input counters were mutated: %v", c)
	}
	if next.Get("PO", "2025") != 1 {
		t.Fatalf("expected advanced counter 1, got %d", next.Get("PO", "2025"))
	}
}

func TestNextSeriesAreIndependent(t *testing.T) {
	c := New("PR", "PO")
	_, c = Next(c, "PR", "2025")
	_, c = Next(c, "PR", "2025")
	id, c := Next(c, "PO", "2025")
	if id != "2025-PO-001" {
		t.Fatalf("expected 2025-PO-001, got %s", id)
	}
	id, _ = Next(c, "PR", "2026")
	if id != "2026-PR-001" {
		t.Fatalf("expected a fresh series per year, got %s", id)
	}
}

func TestNextGrowsPastThreeDigits(t *testing.T) {
	c := Counters{"DV": {"2025": 999}}
	id, _ := Next(c, "DV", "2025")
	if id != "2025-DV-1000" {
		t.Fatalf("expected 2025-DV-1000, got %s", id)
	}
}

func TestNextUnknownPrefix(t *testing.T) {
	id, c := Next(nil, "RIS", "2025")
	if id != "2025-RIS-001" || c.Get("RIS", "2025") != 1 {
		t.Fatalf("unexpected result %s %v", id, c)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want ID
	}{
		{"2026-PR-001", true, ID{"2026", "PR", 1}},
		{"2030-OBR-1234", true, ID{"2030", "OBR", 1234}},
		{"2026-pr-001", false, ID{}},
		{"2026-PR-01", false, ID{}},
		{"PR-2026-001", false, ID{}},
		{"", false, ID{}},
		{"4e1f2a9c-uuid", false, ID{}},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Parse(%q) = %v, %v; expected %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRecompute(t *testing.T) {
	records := []rec{
		{"2025-PF-001", "2025-PR-001", "2025-PO-001", "2025-OBR-001", "2025-DV-001"},
		{"2025-PF-007", "2030-PR-050", "manual PO", "", "2025-DV-003"},
	}
	c := Recompute(records, "PF", "PR", "PO", "OBR", "DV")

	if got := c.Get("PF", "2025"); got != 7 {
		t.Fatalf("expected PF 2025 = 7, got %d", got)
	}
	if got := c.Get("PR", "2030"); got != 50 {
		t.Fatalf("expected PR 2030 = 50, got %d", got)
	}
	if got := c.Get("PR", "2025"); got != 1 {
		t.Fatalf("expected PR 2025 = 1, got %d", got)
	}
	if got := c.Get("DV", "2025"); got != 3 {
		t.Fatalf("expected DV 2025 = 3, got %d", got)
	}

	id, _ := Next(c, "PR", "2030")
	if id != "2030-PR-051" {
		t.Fatalf("expected 2030-PR-051 after recompute, got %s", id)
	}
}

func TestRecomputeKeepsBasePrefixes(t *testing.T) {
	c := Recompute([]rec{}, "PF", "PR", "PO", "OBR", "DV")
	for _, p := range []string{"PF", "PR", "PO", "OBR", "DV"} {
		if _, ok := c[p]; !ok {
			t.Fatalf("missing prefix %s in %v", p, c)
		}
	}
}

func TestCountersScanValue(t *testing.T) {
	c := Counters{"PR": {"2025": 4}}
	v, err := c.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var fromString, fromBytes Counters
	if err := fromString.Scan(v); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if err := fromBytes.Scan([]byte(v.(string))); err != nil {
		t.Fatalf("Scan bytes: %v", err)
	}
	if fromString.Get("PR", "2025") != 4 || fromBytes.Get("PR", "2025") != 4 {
		t.Fatalf("round trip lost data: %v %v", fromString, fromBytes)
	}
}

func TestMergeKeepsMaximum(t *testing.T) {
	a := Counters{"PR": {"2025": 9}, "PO": {"2025": 2}}
	b := Counters{"PR": {"2025": 4, "2026": 1}, "DV": {"2025": 7}}
	m := Merge(a, b)

	if m.Get("PR", "2025") != 9 || m.Get("PR", "2026") != 1 {
		t.Fatalf("unexpected PR counters %v", m["PR"])
	}
	if m.Get("PO", "2025") != 2 || m.Get("DV", "2025") != 7 {
		t.Fatalf("unexpected merge result %v", m)
	}
	if a.Get("PR", "2026") != 0 {
		t.Fatalf("merge mutated its input: %v", a)
	}
}

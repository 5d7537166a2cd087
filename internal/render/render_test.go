package render

import (
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseGrouping(t *testing.T) {
	cases := map[string][]GroupKey{
		"":   {},
		"d":  {GroupDate},
		"f":  {GroupFeed},
		"df": {GroupDate, GroupFeed},
		"fd": {GroupFeed, GroupDate},
	}
	for arg, want := range cases {
		got, err := ParseGrouping(arg)
		if err != nil {
			t.Fatalf("ParseGrouping(%q): %v", arg, err)
		}
		if len(got) != len(want) {
			t.Fatalf("ParseGrouping(%q) = %v, want %v", arg, got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("ParseGrouping(%q) = %v, want %v", arg, got, want)
			}
		}
	}
}

func TestParseGroupingInvalid(t *testing.T) {
	if _, err := ParseGrouping("x"); err == nil {
		t.Fatal("expected an error for an unknown grouping letter")
	}
	if _, err := ParseGrouping("dx"); err == nil {
		t.Fatal("expected an error when any letter is unknown")
	}
}

func TestFormatDateUnknown(t *testing.T) {
	if got := formatDate(Item{}); got != "unknown" {
		t.Fatalf("formatDate(zero time) = %q, want %q", got, "unknown")
	}
}

func TestGroupedFlatListing(t *testing.T) {
	items := []Item{
		{Shorthand: "a", Title: "Post A", FeedLabel: "Alice", PublishedAt: mustDate("2024-01-02")},
		{Shorthand: "b", Title: "Post B", FeedLabel: "Bob", PublishedAt: mustDate("2024-01-01")},
	}
	got := Grouped(items, nil, false)
	want := "2024-01-02  a Post A (Alice)\n2024-01-01  b Post B (Bob)\n"
	if got != want {
		t.Fatalf("Grouped flat = %q, want %q", got, want)
	}
}

func TestGroupedByDateDescending(t *testing.T) {
	items := []Item{
		{Shorthand: "a", Title: "Old", PublishedAt: mustDate("2024-01-01")},
		{Shorthand: "b", Title: "New", PublishedAt: mustDate("2024-01-03")},
		{Shorthand: "c", Title: "Mid", PublishedAt: mustDate("2024-01-02")},
	}
	out := Grouped(items, []GroupKey{GroupDate}, false)
	headers := headerLines(out)
	want := []string{"=== 2024-01-03 ===", "=== 2024-01-02 ===", "=== 2024-01-01 ==="}
	if !equalStrs(headers, want) {
		t.Fatalf("date headers = %v, want %v", headers, want)
	}
}

func TestGroupedByFeedAscending(t *testing.T) {
	items := []Item{
		{Shorthand: "a", Title: "Post", FeedLabel: "Charlie", PublishedAt: mustDate("2024-01-01")},
		{Shorthand: "b", Title: "Post", FeedLabel: "Alice", PublishedAt: mustDate("2024-01-02")},
		{Shorthand: "c", Title: "Post", FeedLabel: "Bob", PublishedAt: mustDate("2024-01-03")},
	}
	out := Grouped(items, []GroupKey{GroupFeed}, false)
	headers := headerLines(out)
	want := []string{"=== Alice ===", "=== Bob ===", "=== Charlie ==="}
	if !equalStrs(headers, want) {
		t.Fatalf("feed headers = %v, want %v", headers, want)
	}
}

func TestGroupedEmptyItems(t *testing.T) {
	if got := Grouped(nil, []GroupKey{GroupDate}, false); got != "" {
		t.Fatalf("Grouped(nil) = %q, want empty string", got)
	}
}

func headerLines(out string) []string {
	var headers []string
	for _, line := range splitLines(out) {
		if len(line) >= 3 && line[:3] == "===" {
			headers = append(headers, line)
		}
	}
	return headers
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}

func equalStrs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Package render formats a list of posts for terminal display: grouped by
// date, by feed, or both, with the post's shorthand and an optional feed
// label alongside its title. Grouping is pure; color comes from
// github.com/charmbracelet/lipgloss.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// GroupKey is one level of a grouped listing.
type GroupKey int

const (
	GroupDate GroupKey = iota
	GroupFeed
)

// ParseGrouping turns a compact grouping argument ("d", "f", "df", "fd",
// or "" for a flat list) into an ordered slice of GroupKey.
func ParseGrouping(arg string) ([]GroupKey, error) {
	keys := make([]GroupKey, 0, len(arg))
	for _, c := range arg {
		switch c {
		case 'd':
			keys = append(keys, GroupDate)
		case 'f':
			keys = append(keys, GroupFeed)
		default:
			return nil, fmt.Errorf("unknown grouping %q: use d, f, df, or fd", arg)
		}
	}
	return keys, nil
}

// Item is one row render draws, already carrying the precomputed shorthand
// and feed label a caller resolved from the store.
type Item struct {
	Shorthand   string
	Title       string
	FeedLabel   string
	PublishedAt time.Time // zero value renders as "unknown"
}

func formatDate(it Item) string {
	if it.PublishedAt.IsZero() {
		return "unknown"
	}
	return it.PublishedAt.Format("2006-01-02")
}

func extractKey(key GroupKey, it Item) string {
	if key == GroupDate {
		return formatDate(it)
	}
	return it.FeedLabel
}

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	dateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func formatItem(it Item, groupedKeys []GroupKey, color bool) string {
	showDate := !containsKey(groupedKeys, GroupDate)
	showFeed := !containsKey(groupedKeys, GroupFeed)

	apply := func(s Style, text string) string {
		if !color {
			return text
		}
		return s.render(text)
	}

	meta := ""
	if showFeed && it.FeedLabel != "" {
		meta = " " + apply(dimItalic, fmt.Sprintf("(%s)", it.FeedLabel))
	}
	datePart := ""
	if showDate {
		datePart = apply(date, formatDate(it)) + "  "
	}
	return fmt.Sprintf("%s%s %s%s", datePart, apply(bold, it.Shorthand), it.Title, meta)
}

func containsKey(keys []GroupKey, key GroupKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Style is a named rendering lens over formatItem/Grouped's internal text,
// backed by lipgloss when color is enabled.
type Style struct {
	render func(string) string
}

var (
	bold      = Style{render: func(s string) string { return boldStyle.Render(s) }}
	dimItalic = Style{render: func(s string) string { return dimStyle.Render(italicStyle.Render(s)) }}
	date      = Style{render: func(s string) string { return dateStyle.Render(s) }}
)

// Grouped renders items recursively under the grouping keys, reproducing
// the listing layout: a "=== value ===" header at depth 0 and
// "--- value ---" at deeper levels, blank-line-separated, descending by
// date or ascending by feed label within each group.
func Grouped(items []Item, keys []GroupKey, color bool) string {
	var out strings.Builder
	recurse(&out, items, keys, keys, color, 0)
	return out.String()
}

func recurse(out *strings.Builder, items []Item, remaining, allKeys []GroupKey, color bool, depth int) {
	indent := strings.Repeat("  ", depth)

	if len(remaining) == 0 {
		for _, it := range items {
			fmt.Fprintf(out, "%s%s\n", indent, formatItem(it, allKeys, color))
		}
		return
	}

	key := remaining[0]
	rest := remaining[1:]

	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if key == GroupDate {
			return extractKey(key, sorted[i]) > extractKey(key, sorted[j]) // descending by date
		}
		return extractKey(key, sorted[i]) < extractKey(key, sorted[j]) // ascending by feed label
	})

	prefix, suffix := "--- ", " ---"
	if depth == 0 {
		prefix, suffix = "=== ", " ==="
	}

	i := 0
	for i < len(sorted) {
		groupVal := extractKey(key, sorted[i])
		j := i
		for j < len(sorted) && extractKey(key, sorted[j]) == groupVal {
			j++
		}
		header := prefix + groupVal + suffix
		if color {
			header = boldStyle.Render(header)
		}
		fmt.Fprintf(out, "%s%s\n", indent, header)
		if depth == 0 {
			out.WriteString("\n")
		}
		recurse(out, sorted[i:j], rest, allKeys, color, depth+1)
		if depth == 0 {
			out.WriteString("\n\n")
		} else {
			out.WriteString("\n")
		}
		i = j
	}
}

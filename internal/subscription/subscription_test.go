package subscription

import (
	"path/filepath"
	"testing"

	"github.com/kantord/blogwarrior-go/internal/feedmodel"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.toml")
	feeds := []feedmodel.Feed{
		{URL: "https://a.example/feed.xml", Title: "A"},
		{URL: "https://b.example/feed.xml", Description: "B's blog"},
	}

	if err := Save(path, feeds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	list, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	got := list.ToFeedModels()
	if len(got) != 2 {
		t.Fatalf("expected 2 feeds, got %d", len(got))
	}
	if got[0].URL != feeds[0].URL || got[0].Title != feeds[0].Title {
		t.Errorf("feed 0 = %+v, want %+v", got[0], feeds[0])
	}
	if got[1].URL != feeds[1].URL || got[1].Description != feeds[1].Description {
		t.Errorf("feed 1 = %+v, want %+v", got[1], feeds[1])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected an error loading a missing subscription file")
	}
}

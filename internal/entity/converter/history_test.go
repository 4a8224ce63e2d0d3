package converter

import (
	"removebg/internal/entity/db"
	"testing"
	"time"
)

func TestHistoryToCard(t *testing.T) {
	created := time.Date(2025, 11, 3, 8, 30, 0, 0, time.UTC)
	record := &db.History{
		ID:        7,
		Username:  "washix",
		ImageName: "public/output-1.png",
		Width:     100,
		Height:    200,
		Size:      2,
		CreatedAt: created,
	}

	card := HistoryToCard(record, func(p string) string { return "/output-1.png" }, time.UTC)

	if card.ImageURL != "/output-1.png" {
		t.Errorf("unexpected image url %q", card.ImageURL)
	}
	if card.Dimensions != "100×200px" {
		t.Errorf("unexpected dimensions %q", card.Dimensions)
	}
	if card.Size != "2.00 MB" {
		t.Errorf("unexpected size %q", card.Size)
	}
	if card.CreatedAt != "2025-11-03 08:30:00" {
		t.Errorf("unexpected created at %q", card.CreatedAt)
	}
}

func TestHistoriesToItems(t *testing.T) {
	records := []db.History{
		{ID: 2, ImageName: "b.png", Width: 3, Height: 4, Size: 0.5},
		{ID: 1, ImageName: "a.png", Width: 1, Height: 2, Size: 0.25},
	}

	items := HistoriesToItems(records, func(p string) string { return "/files/" + p })

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 2 || items[0].ImageURL != "/files/b.png" {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].SizeMB != 0.25 || items[1].ImagePath != "a.png" {
		t.Errorf("unexpected second item %+v", items[1])
	}
}

func TestHistoryToItemNil(t *testing.T) {
	item := HistoryToItem(nil, func(p string) string { return p })
	if item.ID != 0 || item.ImageURL != "" {
		t.Errorf("expected zero item, got %+v", item)
	}
}

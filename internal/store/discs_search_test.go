package store

import (
	"context"
	"strconv"
	"testing"

	"github.com/lostflight/lostflight/internal/db"
	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/search"
)

func parseDiscQuery(raw string) search.Query {
	return search.Parse(raw, DiscSearchFields())
}

func TestSearchDiscsEmptyQueryListsAccount(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")
	other := testUser(t, database, "other@course.test")

	testDisc(t, database, u.ID, DiscParams{Color: "red"})
	testDisc(t, database, u.ID, DiscParams{Color: "blue"})
	testDisc(t, database, other.ID, DiscParams{Color: "red"})

	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery(""))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 2 {
		t.Errorf("expected 2 discs, got %d", len(discs))
	}
}

func TestSearchDiscsFieldFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	testDisc(t, database, u.ID, DiscParams{Color: "Bright Yellow", Brand: "Discraft"})
	testDisc(t, database, u.ID, DiscParams{Color: "blue", Brand: "Innova"})

	// Case-insensitive substring match.
	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("color:yellow"))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 1 || discs[0].Brand != "Discraft" {
		t.Errorf("expected the yellow Discraft, got %+v", discs)
	}
}

func TestSearchDiscsStatusFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	picked := testDisc(t, database, u.ID, DiscParams{Color: "blue"})
	MarkPickedUp(ctx, database, u.ID, []int64{picked.ID})
	testDisc(t, database, u.ID, DiscParams{Color: "blue"})

	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("status:picked_up blue"))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 1 || discs[0].ID != picked.ID {
		t.Errorf("expected only the picked-up disc, got %+v", discs)
	}
}

func TestSearchDiscsBoolFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	notified := testDisc(t, database, u.ID, DiscParams{})
	NotifyDiscs(ctx, database, u.ID, []int64{notified.ID}, futureTime(30))
	testDisc(t, database, u.ID, DiscParams{})

	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("notified:true"))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 1 || discs[0].ID != notified.ID {
		t.Errorf("expected only the notified disc, got %+v", discs)
	}

	discs, _ = SearchDiscs(ctx, database, u.ID, parseDiscQuery("notified:false"))
	if len(discs) != 1 || discs[0].ID == notified.ID {
		t.Errorf("expected only the unnotified disc, got %+v", discs)
	}
}

func TestSearchDiscsFailClosed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	testDisc(t, database, u.ID, DiscParams{})

	// Invalid bool value matches zero rows, not all rows.
	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("notified:maybe"))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 0 {
		t.Errorf("expected no rows for invalid bool, got %d", len(discs))
	}

	discs, _ = SearchDiscs(ctx, database, u.ID, parseDiscQuery("status:lost"))
	if len(discs) != 0 {
		t.Errorf("expected no rows for invalid status, got %d", len(discs))
	}

	discs, _ = SearchDiscs(ctx, database, u.ID, parseDiscQuery("initial_template:abc"))
	if len(discs) != 0 {
		t.Errorf("expected no rows for malformed template id, got %d", len(discs))
	}
}

func TestSearchDiscsGeneralTermsAcrossFields(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	testDisc(t, database, u.ID, DiscParams{Name: "Paul", Location: "hole 7 pond"})
	testDisc(t, database, u.ID, DiscParams{Notes: "paul will pick up tuesday"})
	testDisc(t, database, u.ID, DiscParams{Color: "green"})

	// A term matches any free-text field, case-insensitively.
	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("PAUL"))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 2 {
		t.Errorf("expected 2 matches for 'PAUL', got %d", len(discs))
	}

	// Multiple terms AND together: each must match at least one field.
	discs, _ = SearchDiscs(ctx, database, u.ID, parseDiscQuery("paul pond"))
	if len(discs) != 1 || discs[0].Name != "Paul" {
		t.Errorf("expected 1 match for 'paul pond', got %+v", discs)
	}
}

func TestSearchDiscsLikeWildcardsEscaped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	testDisc(t, database, u.ID, DiscParams{Notes: "50% sure it's his"})
	testDisc(t, database, u.ID, DiscParams{Notes: "certain"})

	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("50%"))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 1 {
		t.Errorf("expected literal %% match only, got %d", len(discs))
	}
}

func TestSearchDiscsTemplateRefFilter(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	tpl, _ := CreateTemplate(ctx, database, u.ID, "initial", "A", testContent)
	linked := testDisc(t, database, u.ID, DiscParams{
		Initial: model.Channel{TemplateID: &tpl.ID},
	})
	testDisc(t, database, u.ID, DiscParams{})

	discs, err := SearchDiscs(ctx, database, u.ID, parseDiscQuery("initial_template:"+strconv.FormatInt(tpl.ID, 10)))
	if err != nil {
		t.Fatalf("SearchDiscs: %v", err)
	}
	if len(discs) != 1 || discs[0].ID != linked.ID {
		t.Errorf("expected only the linked disc, got %+v", discs)
	}
}

package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lostflight/lostflight/internal/db"
	"github.com/lostflight/lostflight/internal/model"
)

const testContent = "Your disc is at $laf until $heldUntil"

func testUser(t *testing.T, database *sql.DB, email string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, email, "hash", "Test")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestCreateAndListTemplates(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	tpl, err := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "Friendly", testContent)
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if tpl.Type != model.TemplateInitial || tpl.IsDefault {
		t.Errorf("unexpected template: %+v", tpl)
	}

	CreateTemplate(ctx, database, u.ID, model.TemplateReminder, "Nudge", testContent)

	all, err := ListTemplates(ctx, database, u.ID, "")
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 templates, got %d", len(all))
	}

	initial, _ := ListTemplates(ctx, database, u.ID, model.TemplateInitial)
	if len(initial) != 1 {
		t.Errorf("expected 1 initial template, got %d", len(initial))
	}
}

func TestTemplateNameUniquePerAccountAcrossTypes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")
	other := testUser(t, database, "other@course.test")

	CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "Friendly", testContent)

	// Same name, different type, same account: rejected.
	_, err := CreateTemplate(ctx, database, u.ID, model.TemplateReminder, "Friendly", testContent)
	if err != ErrDuplicateName {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	// Same name on a different account is fine.
	if _, err := CreateTemplate(ctx, database, other.ID, model.TemplateInitial, "Friendly", testContent); err != nil {
		t.Errorf("expected cross-account name reuse to work, got %v", err)
	}
}

func TestMakeDefaultExclusive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	a, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "A", testContent)
	b, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "B", testContent)
	r, _ := CreateTemplate(ctx, database, u.ID, model.TemplateReminder, "R", testContent)
	MakeDefault(ctx, database, u.ID, r.ID)

	if err := MakeDefault(ctx, database, u.ID, a.ID); err != nil {
		t.Fatalf("MakeDefault: %v", err)
	}
	if err := MakeDefault(ctx, database, u.ID, b.ID); err != nil {
		t.Fatalf("MakeDefault: %v", err)
	}

	// Exactly one default of type initial, and it is b.
	initial, _ := ListTemplates(ctx, database, u.ID, model.TemplateInitial)
	var defaults []int64
	for _, tpl := range initial {
		if tpl.IsDefault {
			defaults = append(defaults, tpl.ID)
		}
	}
	if len(defaults) != 1 || defaults[0] != b.ID {
		t.Errorf("expected only %d as default, got %v", b.ID, defaults)
	}

	// The reminder default is untouched.
	got, _ := GetTemplate(ctx, database, u.ID, r.ID)
	if !got.IsDefault {
		t.Error("expected reminder default to be unaffected")
	}
}

func TestMakeDefaultUnknownTemplate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	if err := MakeDefault(ctx, database, u.ID, 999); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestDeleteDefaultTemplateRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	tpl, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "A", testContent)
	MakeDefault(ctx, database, u.ID, tpl.ID)

	if err := DeleteTemplate(ctx, database, u.ID, tpl.ID); err != ErrDefaultTemplate {
		t.Errorf("expected ErrDefaultTemplate, got %v", err)
	}

	// Deleting a missing template is a no-op.
	if err := DeleteTemplate(ctx, database, u.ID, 999); err != nil {
		t.Errorf("expected nil for missing template, got %v", err)
	}
}

func TestDeleteTemplateClearsDiscReferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	tpl, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "A", testContent)
	d, _ := CreateDisc(ctx, database, u.ID, DiscParams{
		Phone:   "5035550199",
		Initial: model.Channel{TemplateID: &tpl.ID},
	})

	if err := DeleteTemplate(ctx, database, u.ID, tpl.ID); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}

	got, _ := GetDisc(ctx, database, u.ID, d.ID)
	if got.Initial.TemplateID != nil {
		t.Error("expected disc reference to be cleared on template delete")
	}
}

func TestUpdateTemplateTypeGuards(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")

	def, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "Default", testContent)
	MakeDefault(ctx, database, u.ID, def.ID)

	// A default template cannot change type.
	err := UpdateTemplate(ctx, database, u.ID, def.ID, model.TemplateReminder, "Default", testContent)
	if err != ErrDefaultTemplate {
		t.Errorf("expected ErrDefaultTemplate, got %v", err)
	}

	// A referenced template cannot change type.
	used, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "Used", testContent)
	CreateDisc(ctx, database, u.ID, DiscParams{
		Phone:   "5035550199",
		Initial: model.Channel{TemplateID: &used.ID},
	})
	err = UpdateTemplate(ctx, database, u.ID, used.ID, model.TemplateReminder, "Used", testContent)
	if err != ErrTemplateInUse {
		t.Errorf("expected ErrTemplateInUse, got %v", err)
	}

	// Content and name edits without a type change are fine either way.
	if err := UpdateTemplate(ctx, database, u.ID, def.ID, model.TemplateInitial, "Renamed", testContent+"!"); err != nil {
		t.Fatalf("UpdateTemplate: %v", err)
	}
	got, _ := GetTemplate(ctx, database, u.ID, def.ID)
	if got.Name != "Renamed" || got.Content != testContent+"!" {
		t.Errorf("unexpected template after update: %+v", got)
	}

	// A non-default, unreferenced template can change type.
	free, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "Free", testContent)
	if err := UpdateTemplate(ctx, database, u.ID, free.ID, model.TemplateExtension, "Free", testContent); err != nil {
		t.Fatalf("UpdateTemplate type change: %v", err)
	}
}

func TestTemplateOwnershipScoping(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := testUser(t, database, "staff@maplehill.test")
	other := testUser(t, database, "other@course.test")

	tpl, _ := CreateTemplate(ctx, database, u.ID, model.TemplateInitial, "Mine", testContent)

	got, _ := GetTemplate(ctx, database, other.ID, tpl.ID)
	if got != nil {
		t.Error("expected cross-account get to return nothing")
	}
	if err := MakeDefault(ctx, database, other.ID, tpl.ID); err == nil {
		t.Error("expected cross-account make-default to fail")
	}
	DeleteTemplate(ctx, database, other.ID, tpl.ID)
	if got, _ := GetTemplate(ctx, database, u.ID, tpl.ID); got == nil {
		t.Error("expected cross-account delete to be a no-op")
	}
}

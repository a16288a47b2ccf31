package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// testStore opens a store backed by a temp file with the schema applied.
func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}
	return s
}

func TestOpen_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	s := testStore(t)

	if err := s.InitSchema(context.Background()); err != nil {
		t.Errorf("second InitSchema() failed: %v", err)
	}

	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='groceries'`
	if err := s.conn.QueryRow(query).Scan(&count); err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Errorf("groceries table does not exist")
	}
}

func TestCreate_Defaults(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	it, err := s.Create(ctx, "Milk", 0)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if it.ID != 1 {
		t.Errorf("ID = %d, want 1", it.ID)
	}
	if it.Name != "Milk" {
		t.Errorf("Name = %q, want %q", it.Name, "Milk")
	}
	if it.Quantity != 1 {
		t.Errorf("Quantity = %d, want default 1", it.Quantity)
	}
	if it.Checked != 0 {
		t.Errorf("Checked = %d, want 0", it.Checked)
	}
}

func TestCreate_EmptyName(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "", 2); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("Create(\"\") error = %v, want ErrNameRequired", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d after failed create, want 0", count)
	}
}

func TestCreate_NegativeQuantityAllowed(t *testing.T) {
	s := testStore(t)

	it, err := s.Create(context.Background(), "Eggs", -3)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if it.Quantity != -3 {
		t.Errorf("Quantity = %d, want -3", it.Quantity)
	}
}

// Ids must be strictly increasing and never reused, even after a delete.
func TestCreate_MonotonicIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "Bread", 1)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	b, err := s.Create(ctx, "Butter", 1)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if b.ID <= a.ID {
		t.Fatalf("second id %d not greater than first %d", b.ID, a.ID)
	}

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	c, err := s.Create(ctx, "Jam", 1)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if c.ID <= b.ID {
		t.Errorf("id %d reused after delete of %d", c.ID, b.ID)
	}
}

func TestList_OrderedByIDDescending(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, name := range []string{"Milk", "Eggs", "Bread"} {
		if _, err := s.Create(ctx, name, 1); err != nil {
			t.Fatalf("Create(%q) failed: %v", name, err)
		}
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].ID >= items[i-1].ID {
			t.Errorf("items not in descending id order: %v", items)
		}
	}
	if items[0].Name != "Bread" {
		t.Errorf("newest item first = %q, want %q", items[0].Name, "Bread")
	}
}

func TestList_Empty(t *testing.T) {
	s := testStore(t)

	items, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if items == nil {
		t.Fatal("List() returned nil, want empty slice")
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestUpdate_Partial(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	it, err := s.Create(ctx, "Milk", 2)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	checked := int64(1)
	updated, err := s.Update(ctx, it.ID, Fields{Checked: &checked})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if updated.Checked != 1 {
		t.Errorf("Checked = %d, want 1", updated.Checked)
	}
	if updated.Name != "Milk" {
		t.Errorf("Name changed by partial update: %q", updated.Name)
	}
	if updated.Quantity != 2 {
		t.Errorf("Quantity changed by partial update: %d", updated.Quantity)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s := testStore(t)

	name := "Ghost"
	_, err := s.Update(context.Background(), 42, Fields{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}

	// No row may be created as a side effect.
	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d after failed update, want 0", count)
	}
}

func TestUpdate_NoFields(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	it, err := s.Create(ctx, "Milk", 1)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if _, err := s.Update(ctx, it.ID, Fields{}); !errors.Is(err, ErrNoFields) {
		t.Errorf("Update() error = %v, want ErrNoFields", err)
	}
}

func TestUpdate_EmptyName(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	it, err := s.Create(ctx, "Milk", 1)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	empty := ""
	if _, err := s.Update(ctx, it.ID, Fields{Name: &empty}); !errors.Is(err, ErrNameRequired) {
		t.Errorf("Update() error = %v, want ErrNameRequired", err)
	}
}

func TestDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	it, err := s.Create(ctx, "Milk", 1)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := s.Delete(ctx, it.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	items, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d after delete, want 0", len(items))
	}

	// Deleting again (and any nonexistent id) reports not found.
	if err := s.Delete(ctx, it.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(999) error = %v, want ErrNotFound", err)
	}
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.Save(ctx, "a", json.RawMessage(`{"n":1}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save(ctx, "a", json.RawMessage(`{"n":2}`)); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	got, err := s.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var v struct{ N int }
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if v.N != 2 {
		t.Errorf("Load(a).n = %d, want 2 (last writer wins)", v.N)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	exerciseStore(t, fs)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.json")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	p := MessagePointer{ChannelID: "111", MessageID: "222"}
	if err := SavePointer(ctx, fs, "999", p); err != nil {
		t.Fatalf("SavePointer() error = %v", err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}

	got, err := LoadPointer(ctx, reopened, "999")
	if err != nil {
		t.Fatalf("LoadPointer() error = %v", err)
	}
	if got != p {
		t.Errorf("LoadPointer() = %+v, want %+v", got, p)
	}
}

func TestFileStore_RejectsInvalidJSON(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := fs.Save(context.Background(), "k", json.RawMessage(`{`)); err == nil {
		t.Error("Save(invalid) error = nil, want error")
	}
	if _, err := fs.Load(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(k) error = %v, want ErrNotFound", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path); err == nil {
		t.Error("NewFileStore(corrupt) error = nil, want error")
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "database.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	exerciseStore(t, s)
}

func TestPointerWireFormat(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := MessagePointer{ChannelID: "123456789012345678", MessageID: "876543210987654321"}
	if err := SavePointer(ctx, s, "42", p); err != nil {
		t.Fatalf("SavePointer() error = %v", err)
	}

	raw, err := s.Load(ctx, "last_embed_42")
	if err != nil {
		t.Fatalf("Load(last_embed_42) error = %v", err)
	}

	want := `{"channel_id":123456789012345678,"message_id":876543210987654321}`
	if string(raw) != want {
		t.Errorf("stored value = %s, want %s", raw, want)
	}
}

func TestLoadPointer_Missing(t *testing.T) {
	_, err := LoadPointer(context.Background(), NewMemoryStore(), "1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadPointer() error = %v, want ErrNotFound", err)
	}
}

func TestSavePointer_InvalidID(t *testing.T) {
	err := SavePointer(context.Background(), NewMemoryStore(), "1", MessagePointer{ChannelID: "abc", MessageID: "1"})
	if err == nil {
		t.Error("SavePointer() error = nil, want error")
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T, want *MemoryStore", s)
	}

	if _, err := Open(context.Background(), Options{Driver: "redis"}); err == nil {
		t.Error("Open(redis) error = nil, want error")
	}
}

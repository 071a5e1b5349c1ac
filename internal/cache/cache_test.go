package cache

import (
	"os"
	"path/filepath"
	"testing"

	tu "github.com/JuezFenix/bgg-profiler/internal/testing"
)

func TestGameCache(t *testing.T) {
	t.Run("Save then Load", func(t *testing.T) {
		c := NewGameCache(filepath.Join(t.TempDir(), "own_meeple_games"))

		if c.Has("13") {
			t.Fatal("empty cache should not have entries")
		}

		if err := c.Save("13", []byte("<items/>")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		tu.AssertDirExists(t, c.Dir())
		tu.AssertFileExists(t, filepath.Join(c.Dir(), "13.xml"))

		if !c.Has("13") {
			t.Error("expected entry after Save")
		}

		data, err := c.Load("13")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if string(data) != "<items/>" {
			t.Errorf("Load() = %q", data)
		}
	})

	t.Run("existing file is a valid entry", func(t *testing.T) {
		dir := t.TempDir()
		tu.MustWriteFile(t, filepath.Join(dir, "42.xml"), "anything")

		c := NewGameCache(dir)
		if !c.Has("42") {
			t.Error("expected pre-existing file to count as cached")
		}
	})

	t.Run("directory named like an entry is not cached", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "7.xml"), 0755); err != nil {
			t.Fatal(err)
		}
		if NewGameCache(dir).Has("7") {
			t.Error("a directory must not count as a cache entry")
		}
	})

	t.Run("Load missing entry", func(t *testing.T) {
		if _, err := NewGameCache(t.TempDir()).Load("404"); err == nil {
			t.Error("expected error for missing entry")
		}
	})

	t.Run("IDs and Clear", func(t *testing.T) {
		dir := t.TempDir()
		c := NewGameCache(dir)
		for _, id := range []string{"3", "1", "2"} {
			if err := c.Save(id, []byte(id)); err != nil {
				t.Fatalf("Save(%s) error = %v", id, err)
			}
		}
		tu.MustWriteFile(t, filepath.Join(dir, "notes.txt"), "ignored")

		ids, err := c.IDs()
		if err != nil {
			t.Fatalf("IDs() error = %v", err)
		}
		if len(ids) != 3 || ids[0] != "1" || ids[2] != "3" {
			t.Errorf("IDs() = %v", ids)
		}

		n, err := c.Clear()
		if err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if n != 3 {
			t.Errorf("Clear() removed %d, want 3", n)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "notes.txt"))

		if ids, _ := c.IDs(); len(ids) != 0 {
			t.Errorf("expected empty cache after Clear, got %v", ids)
		}
	})

	t.Run("IDs of missing directory", func(t *testing.T) {
		ids, err := NewGameCache(filepath.Join(t.TempDir(), "missing")).IDs()
		if err != nil || len(ids) != 0 {
			t.Errorf("IDs() = %v, %v; want empty, nil", ids, err)
		}
	})
}

func TestCollectionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "own_meeple_games_list.xml")

	if err := SaveCollection(path, []byte("<items/>")); err != nil {
		t.Fatalf("SaveCollection() error = %v", err)
	}
	if err := SaveCollection(path, []byte("<items totalitems=\"0\"/>")); err != nil {
		t.Fatalf("SaveCollection() overwrite error = %v", err)
	}

	data, err := LoadCollection(path)
	if err != nil {
		t.Fatalf("LoadCollection() error = %v", err)
	}
	if string(data) != `<items totalitems="0"/>` {
		t.Errorf("LoadCollection() = %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no temporary files left behind, got %d entries", len(entries))
	}
}

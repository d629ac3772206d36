package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/georisk/internal/model"
)

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	list := []backend{
		{"memory", func(t *testing.T) Store { return NewMemoryStore() }},
		{"file", func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			if err != nil {
				t.Fatalf("open file store: %v", err)
			}
			return s
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := OpenSQL(DialectSQLite, filepath.Join(t.TempDir(), "reports.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}},
	}
	if dsn := os.Getenv("GEORISK_TEST_POSTGRES_DSN"); dsn != "" {
		list = append(list, backend{"postgres", func(t *testing.T) Store {
			s, err := OpenSQL(DialectPostgres, dsn)
			if err != nil {
				t.Fatalf("open postgres: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}})
	}
	if url := os.Getenv("GEORISK_TEST_REDIS_URL"); url != "" {
		list = append(list, backend{"redis", func(t *testing.T) Store {
			s, err := OpenRedis(url, "georisk-test:"+t.Name()+":")
			if err != nil {
				t.Fatalf("open redis: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		}})
	}
	return list
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)

			ok, err := s.Exists(ctx, LatestKey)
			if err != nil || ok {
				t.Fatalf("Exists on empty store = %v, %v", ok, err)
			}
			if _, err := s.Read(ctx, LatestKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Read missing key: expected ErrNotFound, got %v", err)
			}

			if err := s.Write(ctx, LatestKey, []byte(`{"v":1}`)); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := s.Write(ctx, LatestKey, []byte(`{"v":2}`)); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}

			ok, err = s.Exists(ctx, LatestKey)
			if err != nil || !ok {
				t.Fatalf("Exists after write = %v, %v", ok, err)
			}
			got, err := s.Read(ctx, LatestKey)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if string(got) != `{"v":2}` {
				t.Errorf("expected overwritten value, got %s", got)
			}
		})
	}
}

func TestStoreHistory(t *testing.T) {
	ctx := context.Background()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			for _, day := range []string{"2026-10-12", "2026-10-14", "2026-10-13"} {
				if err := s.Write(ctx, ArchivePrefix+day, []byte("{}")); err != nil {
					t.Fatalf("write %s: %v", day, err)
				}
			}
			s.Write(ctx, LatestKey, []byte("{}"))

			days, err := History(ctx, s)
			if err != nil {
				t.Fatalf("History failed: %v", err)
			}
			want := []string{"2026-10-14", "2026-10-13", "2026-10-12"}
			if len(days) != len(want) {
				t.Fatalf("got %v, want %v", days, want)
			}
			for i := range want {
				if days[i] != want[i] {
					t.Errorf("got %v, want %v", days, want)
					break
				}
			}
		})
	}
}

func TestStatusRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := ReadStatus(ctx, s); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any status, got %v", err)
	}

	st := model.Status{
		Status:    model.StateCompleted,
		Message:   "report generated",
		Timestamp: time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC),
		RunID:     "run-1",
	}
	if err := WriteStatus(ctx, s, st); err != nil {
		t.Fatalf("WriteStatus failed: %v", err)
	}
	got, err := ReadStatus(ctx, s)
	if err != nil {
		t.Fatalf("ReadStatus failed: %v", err)
	}
	if got.Status != st.Status || got.Message != st.Message || !got.Timestamp.Equal(st.Timestamp) || got.RunID != st.RunID {
		t.Errorf("got %+v, want %+v", got, st)
	}
}

func TestArchiveKey(t *testing.T) {
	day := time.Date(2026, 10, 14, 23, 59, 0, 0, time.UTC)
	if got := ArchiveKey(day); got != "archive/2026-10-14" {
		t.Errorf("ArchiveKey = %q", got)
	}
}

func TestFileStoreLayoutAndKeyValidation(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Write(ctx, "archive/2026-10-14", []byte("{}")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "archive", "2026-10-14.json")); err != nil {
		t.Errorf("expected archive file on disk: %v", err)
	}
	if err := s.Write(ctx, "../escape", []byte("{}")); err == nil {
		t.Error("expected error for key escaping the store dir")
	}
}

func TestSQLiteMemory(t *testing.T) {
	s, err := OpenSQL(DialectSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Write(ctx, "k-memory", []byte("v")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := s.Read(ctx, "k-memory")
	if err != nil || string(got) != "v" {
		t.Errorf("Read = %q, %v", got, err)
	}
}

func TestPostgresPlaceholders(t *testing.T) {
	s := &SQLStore{dialect: DialectPostgres}
	got := s.q(`INSERT INTO reports (key, data) VALUES (?, ?)`)
	if got != `INSERT INTO reports (key, data) VALUES ($1, $2)` {
		t.Errorf("unexpected rewrite: %s", got)
	}
	lite := &SQLStore{dialect: DialectSQLite}
	if lite.q("?") != "?" {
		t.Error("sqlite queries must be left alone")
	}
}

func TestOpenDrivers(t *testing.T) {
	if _, err := Open("bogus", "", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
	s, err := Open("memory", "", "")
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", s)
	}
	fs, err := Open("file", t.TempDir(), "")
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if err := Close(fs); err != nil {
		t.Errorf("Close on file store: %v", err)
	}
}

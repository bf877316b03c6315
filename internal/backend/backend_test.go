package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Reasonofmoon/tuition-automation/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cases := []struct {
		name    string
		app     *config.Config
		want    Type
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"memory", &config.Config{DataBackend: "memory", DataDir: "data"}, Memory, false},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLite, false},
		{"unknown", &config.Config{DataBackend: "postgres"}, "", true},
	}
	for _, tc := range cases {
		got, err := FromAppConfig(tc.app)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got.Type != tc.want {
			t.Fatalf("%s: expected type %s, got %s", tc.name, tc.want, got.Type)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: "redis"}).Validate(); err == nil {
		t.Fatalf("expected invalid type error")
	}
	if err := (Config{Type: SQLite}).Validate(); err == nil {
		t.Fatalf("expected missing db path error")
	}
	if err := (Config{Type: SQLite, SQLiteDBPath: "x.db"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Config{Type: Memory}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateMemoryBackendSeedsFromCSV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csv := "name,class,baseFee\n김민준,수학A,150000\n이하늘,영어B,100000\n"
	if err := os.WriteFile(filepath.Join(dir, "students.csv"), []byte(csv), 0644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	result, err := NewFactory(nil).CreateBackend(ctx, Config{Type: Memory, DataDirectory: dir})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	students, err := result.Repository.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(students) != 2 || students[0].Name != "김민준" {
		t.Fatalf("seed not loaded: %+v", students)
	}
	if result.Cleanup != nil {
		t.Fatalf("memory backend needs no cleanup")
	}
}

func TestCreateMemoryBackendWithoutSeedFile(t *testing.T) {
	ctx := context.Background()
	result, err := NewFactory(nil).CreateBackend(ctx, Config{Type: Memory, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	students, err := result.Repository.ListStudents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected no students, got %+v", students)
	}
}

func TestAcademyNameSeedDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(ctx, Config{
		Type: Memory, DataDirectory: t.TempDir(), AcademyName: "문학원",
	})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	name, _ := result.Repository.AcademyName(ctx)
	if name != "문학원" {
		t.Fatalf("expected seeded name, got %q", name)
	}

	// An already-set name wins over the configured seed.
	if err := result.Repository.SetAcademyName(ctx, "새학원"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := factory.(*DefaultFactory).seedAcademyName(ctx, result.Repository, "문학원"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	name, _ = result.Repository.AcademyName(ctx)
	if name != "새학원" {
		t.Fatalf("seed must not overwrite, got %q", name)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tuition.db")
	result, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLite, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("create backend: %v", err)
	}
	if result.Cleanup == nil {
		t.Fatalf("sqlite backend must expose a cleanup")
	}
	defer result.Cleanup()
	if _, err := result.Repository.ListStudents(ctx); err != nil {
		t.Fatalf("list on fresh db: %v", err)
	}
}

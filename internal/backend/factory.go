package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Reasonofmoon/tuition-automation/internal/store"
	"github.com/Reasonofmoon/tuition-automation/internal/store/memory"
	"github.com/Reasonofmoon/tuition-automation/internal/storage"
	"github.com/Reasonofmoon/tuition-automation/internal/transfer"
)

// Result carries the constructed repository and its cleanup.
type Result struct {
	Repository store.Repository
	Cleanup    CleanupFunc
}

// Factory creates record stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var result *Result
	var err error
	switch config.Type {
	case SQLite:
		result, err = f.createSQLiteBackend(config)
	case Memory:
		result, err = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := f.seedAcademyName(ctx, result.Repository, config.AcademyName); err != nil {
		f.logger.Warn("Failed to seed academy name", "error", err)
	}
	return result, nil
}

// seedAcademyName stores the configured name once; an already-set name
// always wins over the environment.
func (f *DefaultFactory) seedAcademyName(ctx context.Context, repo store.Repository, name string) error {
	if name == "" {
		return nil
	}
	current, err := repo.AcademyName(ctx)
	if err != nil {
		return err
	}
	if current != "" {
		return nil
	}
	return repo.SetAcademyName(ctx, name)
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{Repository: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*Result, error) {
	st := memory.New()

	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	seeded := f.seedStudents(ctx, st, filepath.Join(dataDir, "students.csv"))

	f.logger.Info("Initialized memory backend",
		"data_directory", dataDir,
		"seeded_students", seeded)

	return &Result{Repository: st, Cleanup: nil}, nil
}

// seedStudents loads an optional students CSV into a fresh memory
// store. Missing or unreadable seed files are not errors.
func (f *DefaultFactory) seedStudents(ctx context.Context, st *memory.Store, path string) int {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	students, err := transfer.ParseStudentsCSV(file)
	if err != nil {
		f.logger.Warn("Failed to parse seed students", "path", path, "error", err)
		return 0
	}
	added := 0
	for _, s := range students {
		if _, err := st.AddStudent(ctx, s); err == nil {
			added++
		}
	}
	return added
}

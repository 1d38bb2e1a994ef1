package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rafaelvasco/dindinho/internal/logging"
	"github.com/rafaelvasco/dindinho/internal/models"
)

const (
	expensesFile      = "expenses.yaml"
	ignoredFile       = "ignored.yaml"
	subscriptionsFile = "subscriptions.yaml"
)

// FileStore persists the dataset as YAML files under a data directory.
// Commits are staged in memory and written with temp-file + rename so a
// failed batch never leaves partially written state behind.
type FileStore struct {
	dir    string
	logger logging.Logger
	mu     sync.Mutex
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string, logger logging.Logger) (*FileStore, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

type expensesDoc struct {
	Expenses []models.Expense `yaml:"expenses"`
}

type ignoredDoc struct {
	Ignored []models.IgnoredExpense `yaml:"ignored"`
}

type subscriptionsDoc struct {
	Subscriptions []models.Subscription `yaml:"subscriptions"`
}

// load reads the three YAML files. Missing files are treated as empty
// collections, not errors; a fresh data directory is a valid store.
func (s *FileStore) load() (*dataset, error) {
	var (
		exp  expensesDoc
		ign  ignoredDoc
		subs subscriptionsDoc
	)
	if err := s.readYAML(expensesFile, &exp); err != nil {
		return nil, err
	}
	if err := s.readYAML(ignoredFile, &ign); err != nil {
		return nil, err
	}
	if err := s.readYAML(subscriptionsFile, &subs); err != nil {
		return nil, err
	}
	return &dataset{
		Expenses:      exp.Expenses,
		Ignored:       ign.Ignored,
		Subscriptions: subs.Subscriptions,
	}, nil
}

func (s *FileStore) readYAML(name string, out interface{}) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("Store file not found, starting empty",
				logging.Field{Key: "file", Value: path})
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) writeYAML(name string, doc interface{}) error {
	path := filepath.Join(s.dir, name)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) save(d *dataset) error {
	if err := s.writeYAML(expensesFile, expensesDoc{Expenses: d.Expenses}); err != nil {
		return err
	}
	if err := s.writeYAML(ignoredFile, ignoredDoc{Ignored: d.Ignored}); err != nil {
		return err
	}
	return s.writeYAML(subscriptionsFile, subscriptionsDoc{Subscriptions: d.Subscriptions})
}

func (s *FileStore) Expenses(_ context.Context) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.Expenses, nil
}

func (s *FileStore) FindExpense(_ context.Context, key models.DedupKey) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	if e := d.findExpense(key); e != nil {
		found := *e
		return &found, nil
	}
	return nil, nil
}

func (s *FileStore) UpdateExpenseCategory(_ context.Context, id, category string, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return err
	}
	if err := d.updateCategory(id, category, confirmed); err != nil {
		return err
	}
	return s.save(d)
}

func (s *FileStore) IgnoredExpenses(_ context.Context) ([]models.IgnoredExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.Ignored, nil
}

func (s *FileStore) FindIgnoredExpense(_ context.Context, norm string) (*models.IgnoredExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	if e := d.findIgnored(norm); e != nil {
		found := *e
		return &found, nil
	}
	return nil, nil
}

func (s *FileStore) Subscriptions(_ context.Context) ([]models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	return d.Subscriptions, nil
}

func (s *FileStore) FindSubscription(_ context.Context, norm string) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.load()
	if err != nil {
		return nil, err
	}
	if sub := d.findSubscription(norm); sub != nil {
		found := *sub
		found.History = append([]models.Occurrence(nil), sub.History...)
		return &found, nil
	}
	return nil, nil
}

// Transact loads the current dataset, runs fn against a staged view and
// writes every file back only when fn succeeds. The mutex serializes
// import sessions for the lifetime of this process.
func (s *FileStore) Transact(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return err
	}
	staged := d.clone()
	if err := fn(&txView{staged: staged}); err != nil {
		return err
	}
	return s.save(staged)
}

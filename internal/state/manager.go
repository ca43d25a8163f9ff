package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thruflo/stato/internal/compiler"
	"github.com/thruflo/stato/internal/config"
	"github.com/thruflo/stato/internal/logging"
	"github.com/thruflo/stato/internal/module"
)

// Manager reads and writes the modules of one project. All writes go
// through validation.
type Manager struct {
	root      string
	backups   BackupStore
	validator *compiler.Validator
	now       func() time.Time
	log       *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupStore replaces the default file store under .stato/.history.
func WithBackupStore(s BackupStore) Option {
	return func(m *Manager) { m.backups = s }
}

// WithValidator sets the validator used by Write.
func WithValidator(v *compiler.Validator) Option {
	return func(m *Manager) { m.validator = v }
}

// WithClock sets the time source used to stamp backups.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager returns a Manager for the project at projectDir. Modules
// live under projectDir/.stato.
func NewManager(projectDir string, opts ...Option) *Manager {
	root := filepath.Join(projectDir, config.StatoDir)
	m := &Manager{
		root:      root,
		validator: compiler.New(),
		now:       time.Now,
		log:       logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.backups == nil {
		m.backups = NewFileStore(filepath.Join(root, config.DefaultDir))
	}
	return m
}

// Root returns the module store directory.
func (m *Manager) Root() string { return m.root }

// Close releases the backup store.
func (m *Manager) Close() error { return m.backups.Close() }

// resolve maps a module path to its file, rejecting paths that escape the
// store or point into hidden directories such as the backup directory.
func (m *Manager) resolve(rel string) (string, string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || filepath.IsAbs(clean) || !filepath.IsLocal(clean) {
		return "", "", fmt.Errorf("%w: %s", ErrPathOutsideStore, rel)
	}
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return "", "", fmt.Errorf("%w: %s", ErrPathOutsideStore, rel)
		}
	}
	return filepath.ToSlash(clean), filepath.Join(m.root, clean), nil
}

// Write validates src and, if it passes, stores its corrected form at rel.
func (m *Manager) Write(ctx context.Context, rel, src string) (*module.ValidationResult, error) {
	return m.WriteAs(ctx, rel, src, "")
}

// WriteAs is Write with an expected-kind hint for ambiguous documents.
//
// A document that fails validation leaves the store untouched and is
// reported through the result, not the error. The error is non-nil only
// for host failures such as an unwritable backup.
func (m *Manager) WriteAs(ctx context.Context, rel, src string, hint module.Kind) (*module.ValidationResult, error) {
	name, target, err := m.resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := m.log.With("module", name)

	res := m.validator.Validate(src, hint)
	if !res.Success {
		log.Info("write rejected", "errors", len(res.HardErrors), "first", res.HardErrors[0].Code)
		return res, nil
	}

	current, err := os.ReadFile(target)
	switch {
	case err == nil:
		b, err := m.backups.Save(ctx, name, current, m.now())
		if err != nil {
			log.Warn("backup failed", "error", err)
			return res, fmt.Errorf("failed to back up %s: %w", name, err)
		}
		log.Debug("backed up", "seq", b.Seq, "id", b.ID)
	case !errors.Is(err, fs.ErrNotExist):
		return res, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := writeFileAtomic(target, []byte(res.CorrectedSource)); err != nil {
		log.Warn("write failed", "error", err)
		return res, fmt.Errorf("failed to write %s: %w", name, err)
	}
	log.Info("module written", "kind", res.Kind, "corrections", len(res.AutoCorrections))
	return res, nil
}

// Rollback restores the most recent backup of rel. The current content is
// backed up first, so a rollback can itself be rolled back. The restored
// bytes are not revalidated.
func (m *Manager) Rollback(ctx context.Context, rel string) (Backup, error) {
	name, target, err := m.resolve(rel)
	if err != nil {
		return Backup{}, err
	}
	latest, err := m.backups.Latest(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNoBackupAvailable) {
			return Backup{}, fmt.Errorf("%w: %s", ErrNoBackupAvailable, name)
		}
		return Backup{}, fmt.Errorf("failed to find backup of %s: %w", name, err)
	}

	current, err := os.ReadFile(target)
	switch {
	case err == nil:
		if _, err := m.backups.Save(ctx, name, current, m.now()); err != nil {
			return Backup{}, fmt.Errorf("failed to back up %s: %w", name, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Backup{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := writeFileAtomic(target, latest.Content); err != nil {
		return Backup{}, fmt.Errorf("failed to restore %s: %w", name, err)
	}
	m.log.Info("module rolled back", "module", name, "seq", latest.Seq)
	return latest, nil
}

// Read returns the current source of rel.
func (m *Manager) Read(rel string) (string, error) {
	name, target, err := m.resolve(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrModuleNotFound, name)
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// History returns up to n backups of rel, newest first.
func (m *Manager) History(ctx context.Context, rel string, n int) ([]Backup, error) {
	name, _, err := m.resolve(rel)
	if err != nil {
		return nil, err
	}
	return m.backups.List(ctx, name, n)
}

// Diff returns a unified diff from the latest backup of rel to its current
// content. It is empty when rel has no history.
func (m *Manager) Diff(ctx context.Context, rel string) (string, error) {
	current, err := m.Read(rel)
	if err != nil {
		return "", err
	}
	name, _, _ := m.resolve(rel)
	latest, err := m.backups.Latest(ctx, name)
	if errors.Is(err, ErrNoBackupAvailable) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find backup of %s: %w", name, err)
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(latest.Content)),
		B:        difflib.SplitLines(current),
		FromFile: name + " (previous)",
		ToFile:   name + " (current)",
		Context:  3,
	})
}

// ModuleStatus is the validation summary of a stored module.
type ModuleStatus struct {
	Path   string
	Result *module.ValidationResult
}

// List validates every .py module in the store, sorted by path. Hidden
// directories are skipped.
func (m *Manager) List(ctx context.Context) ([]ModuleStatus, error) {
	var out []ModuleStatus
	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != m.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".py" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(m.root, path)
		if err != nil {
			return err
		}
		out = append(out, ModuleStatus{
			Path:   filepath.ToSlash(rel),
			Result: m.validator.Validate(string(data), ""),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

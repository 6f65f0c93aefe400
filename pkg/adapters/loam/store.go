package loam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/twentyfive/pkg/domain"
)

// Document is the front matter of an instance document.
// The lists live in metadata; the body is a human-readable rendering.
type Document struct {
	ID        string   `json:"id" mapstructure:"id"`
	Goals     []string `json:"goals" mapstructure:"goals"`
	Tasks     []string `json:"tasks" mapstructure:"tasks"`
	Revision  uint64   `json:"revision" mapstructure:"revision"`
	UpdatedAt string   `json:"updated_at,omitempty" mapstructure:"updated_at"`
	Sealed    string   `json:"sealed,omitempty" mapstructure:"sealed"`
}

// Store implements ports.StateStore on top of a Loam document repository.
// Each instance is one Markdown document, so lists can be read and edited by hand.
type Store struct {
	Repo     *loam.TypedRepository[Document]
	basePath string
}

// Open initializes a Loam repository at path (created if missing) and wraps it.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure document directory: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return &Store{
		Repo:     loam.NewTypedRepository[Document](repo),
		basePath: absPath,
	}, nil
}

// Save writes the instance as a Markdown document.
func (s *Store) Save(ctx context.Context, instanceID string, inst *domain.Instance) error {
	if err := validateID(instanceID); err != nil {
		return err
	}

	doc := &loam.DocumentModel[Document]{
		ID:      instanceID,
		Content: render(inst),
		Data: Document{
			ID:       instanceID,
			Goals:    inst.Goals.Clone().Items,
			Tasks:    inst.Tasks.Clone().Items,
			Revision: inst.Revision,
			Sealed:   inst.Sealed,
		},
	}
	if !inst.UpdatedAt.IsZero() {
		doc.Data.UpdatedAt = inst.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	if err := s.Repo.Save(ctx, doc); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", instanceID, err)
	}
	return nil
}

// Load reads the instance document back.
func (s *Store) Load(ctx context.Context, instanceID string) (*domain.Instance, error) {
	if err := validateID(instanceID); err != nil {
		return nil, err
	}

	files, err := s.files(instanceID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.ErrInstanceNotFound
	}

	doc, err := s.Repo.Get(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", instanceID, err)
	}

	inst := domain.NewInstance(instanceID)
	inst.Revision = doc.Data.Revision
	inst.Sealed = doc.Data.Sealed
	if doc.Data.Goals != nil {
		inst.Goals.Items = append(inst.Goals.Items, doc.Data.Goals...)
	}
	if doc.Data.Tasks != nil {
		inst.Tasks.Items = append(inst.Tasks.Items, doc.Data.Tasks...)
	}
	if doc.Data.UpdatedAt != "" {
		if ts, err := time.Parse(time.RFC3339Nano, doc.Data.UpdatedAt); err == nil {
			inst.UpdatedAt = ts
		}
	}

	return inst, nil
}

// Delete removes every file backing the instance.
func (s *Store) Delete(ctx context.Context, instanceID string) error {
	if err := validateID(instanceID); err != nil {
		return err
	}

	files, err := s.files(instanceID)
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to delete instance document: %w", errors.Join(errs...))
	}
	return nil
}

// List returns the IDs of every document in the repository.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]bool, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// files returns the on-disk documents for an ID, whatever serializer wrote them.
func (s *Store) files(instanceID string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, instanceID+".*"))
	if err != nil {
		return nil, fmt.Errorf("failed to locate instance document: %w", err)
	}
	return matches, nil
}

func validateID(instanceID string) error {
	if instanceID == "" {
		return fmt.Errorf("instanceID cannot be empty")
	}
	if strings.ContainsAny(instanceID, `/\*?[`) || strings.HasPrefix(instanceID, ".") {
		return fmt.Errorf("invalid instanceID %q", instanceID)
	}
	return nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}

func render(inst *domain.Instance) string {
	var b strings.Builder
	for i, kind := range domain.Kinds {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(string(kind[:1]))+string(kind[1:]))
		list := inst.List(kind)
		if list.Len() == 0 {
			fmt.Fprintf(&b, "_No %s yet._\n", kind)
			continue
		}
		for n, item := range list.Items {
			fmt.Fprintf(&b, "%d. %s\n", n+1, item)
		}
	}
	return b.String()
}

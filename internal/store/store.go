// Package store persists extension objects for the mock server in SQLite.
//
// Objects are kept as JSON documents keyed by group, resource and name.
// Every write bumps metadata.version; writes carrying a stale version fail
// with models.ErrVersionConflict.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	_ "modernc.org/sqlite"

	"github.com/yaroslav/haloclient/internal/metrics"
	"github.com/yaroslav/haloclient/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS objects (
	api_group  TEXT    NOT NULL,
	resource   TEXT    NOT NULL,
	name       TEXT    NOT NULL,
	version    INTEGER NOT NULL,
	created_at TEXT    NOT NULL,
	data       TEXT    NOT NULL,
	PRIMARY KEY (api_group, resource, name)
)`

// generateNameSuffixLength is the number of random characters appended to
// metadata.generateName.
const generateNameSuffixLength = 5

// Store provides CRUD, list and patch operations over extension objects.
// It is safe for concurrent use.
type Store struct {
	db      *sql.DB
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Open opens the database at path and creates the schema. An empty path or
// ":memory:" opens a private in-memory database.
func Open(path string, logger *zap.Logger, m *metrics.Metrics) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	inMemory := path == "" || path == ":memory:"

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	if inMemory {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if inMemory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("store opened", zap.String("path", dsn))

	return &Store{db: db, logger: logger, metrics: m, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Create stores a new object. An empty metadata.name is generated from
// metadata.generateName. The stored object has version 0 and a creation
// timestamp.
func (s *Store) Create(ctx context.Context, gr schema.GroupResource, obj *unstructured.Unstructured) (_ *unstructured.Unstructured, err error) {
	defer s.observe("create", time.Now(), &err)

	if err := validateGroup(gr, obj); err != nil {
		return nil, err
	}

	obj = obj.DeepCopy()
	if obj.GetName() == "" {
		prefix := obj.GetGenerateName()
		if prefix == "" {
			return nil, fmt.Errorf("%w: metadata.name or metadata.generateName is required", models.ErrInvalidRequest)
		}
		obj.SetName(prefix + randomSuffix())
	}

	created := s.now().UTC()
	setVersion(obj, 0)
	if err := unstructured.SetNestedField(obj.Object, created.Format(time.RFC3339Nano), "metadata", "creationTimestamp"); err != nil {
		return nil, fmt.Errorf("failed to set creation timestamp: %w", err)
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode object: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO objects (api_group, resource, name, version, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, gr.Group, gr.Resource, obj.GetName(), 0, created.Format(time.RFC3339Nano), string(data))
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, fmt.Errorf("%w: %s %q", models.ErrAlreadyExists, gr.String(), obj.GetName())
		}
		return nil, fmt.Errorf("failed to insert object: %w", err)
	}

	s.refreshCount(ctx, gr)
	return obj, nil
}

// Get returns the object called name.
func (s *Store) Get(ctx context.Context, gr schema.GroupResource, name string) (_ *unstructured.Unstructured, err error) {
	defer s.observe("get", time.Now(), &err)

	obj, _, err := s.load(ctx, s.db, gr, name)
	return obj, err
}

// List returns the objects of gr matching q, sorted and paged.
func (s *Store) List(ctx context.Context, gr schema.GroupResource, q Query) (_ *models.ListResult[unstructured.Unstructured], err error) {
	defer s.observe("list", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM objects
		WHERE api_group = ? AND resource = ?
		ORDER BY name ASC
	`, gr.Group, gr.Resource)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer rows.Close()

	var items []unstructured.Unstructured
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}

		obj, err := decode([]byte(data))
		if err != nil {
			return nil, err
		}
		if q.Matches(obj) {
			items = append(items, *obj)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate objects: %w", err)
	}

	q.SortItems(items)

	total := int64(len(items))
	result := models.NewListResult(q.Page, q.Size, total, q.PageItems(items))
	return &result, nil
}

// Update replaces the object called name. A metadata.version in obj must
// match the stored version; an absent version skips the check. The creation
// timestamp is preserved.
func (s *Store) Update(ctx context.Context, gr schema.GroupResource, name string, obj *unstructured.Unstructured) (_ *unstructured.Unstructured, err error) {
	defer s.observe("update", time.Now(), &err)

	if err := validateGroup(gr, obj); err != nil {
		return nil, err
	}
	if obj.GetName() != name {
		return nil, fmt.Errorf("%w: metadata.name %q does not match %q", models.ErrInvalidRequest, obj.GetName(), name)
	}

	return s.replace(ctx, gr, name, func(current *unstructured.Unstructured) (*unstructured.Unstructured, error) {
		return obj.DeepCopy(), nil
	})
}

// Patch applies an RFC 6902 JSON patch to the object called name.
// Changing metadata.name is rejected; a patched metadata.version must still
// match the stored one.
func (s *Store) Patch(ctx context.Context, gr schema.GroupResource, name string, patchJSON []byte) (_ *unstructured.Unstructured, err error) {
	defer s.observe("patch", time.Now(), &err)

	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPatch, err)
	}

	return s.replace(ctx, gr, name, func(current *unstructured.Unstructured) (*unstructured.Unstructured, error) {
		original, err := current.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode object: %w", err)
		}

		patched, err := patch.Apply(original)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidPatch, err)
		}

		obj, err := decode(patched)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidPatch, err)
		}
		if obj.GetName() != name {
			return nil, fmt.Errorf("%w: metadata.name cannot be patched", models.ErrInvalidPatch)
		}
		if err := validateGroup(gr, obj); err != nil {
			return nil, err
		}
		return obj, nil
	})
}

// Delete removes the object called name and returns it.
func (s *Store) Delete(ctx context.Context, gr schema.GroupResource, name string) (_ *unstructured.Unstructured, err error) {
	defer s.observe("delete", time.Now(), &err)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	obj, _, err := s.load(ctx, tx, gr, name)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM objects WHERE api_group = ? AND resource = ? AND name = ?
	`, gr.Group, gr.Resource, name); err != nil {
		return nil, fmt.Errorf("failed to delete object: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}

	s.refreshCount(ctx, gr)
	return obj, nil
}

// replace loads the current object, lets mutate build the new one and writes
// it back with version+1, all in one transaction.
func (s *Store) replace(ctx context.Context, gr schema.GroupResource, name string, mutate func(*unstructured.Unstructured) (*unstructured.Unstructured, error)) (*unstructured.Unstructured, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, currentVersion, err := s.load(ctx, tx, gr, name)
	if err != nil {
		return nil, err
	}

	next, err := mutate(current.DeepCopy())
	if err != nil {
		return nil, err
	}

	if v, ok := version(next); ok && v != currentVersion {
		return nil, fmt.Errorf("%w: %s %q has version %d, got %d", models.ErrVersionConflict, gr.String(), name, currentVersion, v)
	}

	newVersion := currentVersion + 1
	setVersion(next, newVersion)
	if ts, found, _ := unstructured.NestedString(current.Object, "metadata", "creationTimestamp"); found {
		if err := unstructured.SetNestedField(next.Object, ts, "metadata", "creationTimestamp"); err != nil {
			return nil, fmt.Errorf("failed to keep creation timestamp: %w", err)
		}
	}

	data, err := next.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode object: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE objects SET version = ?, data = ?
		WHERE api_group = ? AND resource = ? AND name = ? AND version = ?
	`, newVersion, string(data), gr.Group, gr.Resource, name, currentVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update object: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: %s %q was modified concurrently", models.ErrVersionConflict, gr.String(), name)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	return next, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) load(ctx context.Context, q querier, gr schema.GroupResource, name string) (*unstructured.Unstructured, int64, error) {
	var (
		data    string
		version int64
	)

	err := q.QueryRowContext(ctx, `
		SELECT data, version FROM objects
		WHERE api_group = ? AND resource = ? AND name = ?
	`, gr.Group, gr.Resource, name).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("%w: %s %q", models.ErrNotFound, gr.String(), name)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load object: %w", err)
	}

	obj, err := decode([]byte(data))
	if err != nil {
		return nil, 0, err
	}
	return obj, version, nil
}

func (s *Store) refreshCount(ctx context.Context, gr schema.GroupResource) {
	if s.metrics == nil {
		return
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM objects WHERE api_group = ? AND resource = ?
	`, gr.Group, gr.Resource).Scan(&count); err != nil {
		s.logger.Warn("failed to count objects", zap.String("resource", gr.String()), zap.Error(err))
		return
	}
	s.metrics.StoredObjects.WithLabelValues(gr.String()).Set(float64(count))
}

func (s *Store) observe(operation string, start time.Time, err *error) {
	if s.metrics != nil {
		s.metrics.ObserveStore(operation, start, *err)
	}
}

// decode parses a stored or submitted object. apiVersion and kind are required.
func decode(data []byte) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRequest, err)
	}
	return obj, nil
}

// Decode parses a request body into an object.
func Decode(data []byte) (*unstructured.Unstructured, error) {
	return decode(data)
}

func validateGroup(gr schema.GroupResource, obj *unstructured.Unstructured) error {
	if obj == nil {
		return fmt.Errorf("%w: request body is required", models.ErrInvalidRequest)
	}
	if group := obj.GroupVersionKind().Group; group != gr.Group {
		return fmt.Errorf("%w: apiVersion group %q does not match %q", models.ErrInvalidRequest, group, gr.Group)
	}
	return nil
}

func version(obj *unstructured.Unstructured) (int64, bool) {
	v, found, err := unstructured.NestedInt64(obj.Object, "metadata", "version")
	if err != nil || !found {
		return 0, false
	}
	return v, true
}

func setVersion(obj *unstructured.Unstructured, v int64) {
	// metadata is always a map for decoded objects
	_ = unstructured.SetNestedField(obj.Object, v, "metadata", "version")
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:generateNameSuffixLength]
}

func isUniqueConstraint(err error) bool {
	if err == nil {
		return false
	}
	// SQLite constraint errors include "UNIQUE constraint failed"
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

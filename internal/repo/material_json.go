package repo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rogerio-castellano/inventory-catalog/internal/models"
	"go.uber.org/zap"
)

// snapshot is the on-disk layout of the catalog file.
type snapshot struct {
	Materials []models.Material `json:"materials"`
	NextID    int               `json:"next_id"`
}

// rawSnapshot defers decoding of entries so bad ones can be dropped one by one.
type rawSnapshot struct {
	Materials []json.RawMessage `json:"materials"`
	NextID    json.RawMessage   `json:"next_id"`
}

// JSONFileMaterialRepository keeps the catalog in memory and flushes the full
// snapshot to a single JSON file after every mutation. All methods are safe
// for concurrent use; operations are serialized by one mutex.
type JSONFileMaterialRepository struct {
	mu        sync.Mutex
	path      string
	logger    *zap.Logger
	materials map[int]models.Material
	order     []int
	nextID    int
}

// NewJSONFileMaterialRepository creates the backing file when missing and
// loads its content.
func NewJSONFileMaterialRepository(path string, logger *zap.Logger) (*JSONFileMaterialRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &JSONFileMaterialRepository{
		path:      path,
		logger:    logger.With(zap.String("file", path)),
		materials: map[int]models.Material{},
		nextID:    1,
	}
	if err := r.EnsureFileExists(); err != nil {
		return nil, err
	}
	if err := r.Load(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path returns the backing file path.
func (r *JSONFileMaterialRepository) Path() string {
	return r.path
}

// NextID returns the id the next created material will receive.
func (r *JSONFileMaterialRepository) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextID
}

// EnsureFileExists writes an empty catalog when the backing file is absent.
// An existing file is left untouched.
func (r *JSONFileMaterialRepository) EnsureFileExists() error {
	_, err := os.Stat(r.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: checking %s: %w", ErrPersistence, r.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data directory: %w", ErrPersistence, err)
	}
	data, err := encodeSnapshot(snapshot{Materials: []models.Material{}, NextID: 1})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	r.logger.Info("Created empty catalog file")
	return nil
}

// Load replaces the in-memory catalog with the content of the backing file.
// A missing, empty or unparseable file resets the catalog and rewrites the
// file. Entries without a positive integer id, or that fail to decode, are
// dropped.
func (r *JSONFileMaterialRepository) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Warn("Catalog file missing, starting empty")
		return r.resetLocked()
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrPersistence, r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		r.logger.Warn("Catalog file is empty, starting empty")
		return r.resetLocked()
	}

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		r.logger.Warn("Catalog file is corrupt, starting empty", zap.Error(err))
		return r.resetLocked()
	}

	materials := map[int]models.Material{}
	order := []int{}
	maxID := 0
	for i, entry := range raw.Materials {
		id, ok := entryID(entry)
		if !ok {
			r.logger.Warn("Dropping entry without a valid integer id", zap.Int("index", i))
			continue
		}
		var m models.Material
		if err := json.Unmarshal(entry, &m); err != nil {
			r.logger.Warn("Dropping undecodable entry", zap.Int("index", i), zap.Int("id", id), zap.Error(err))
			continue
		}
		if _, dup := materials[id]; dup {
			r.logger.Warn("Duplicate id in catalog file, keeping the later entry", zap.Int("id", id))
		} else {
			order = append(order, id)
		}
		materials[id] = m
		maxID = max(maxID, id)
	}

	nextID, ok := parsePositiveInt(raw.NextID)
	if !ok {
		nextID = maxID + 1
		r.logger.Warn("next_id missing or invalid, recomputed", zap.Int("next_id", nextID))
	} else if nextID <= maxID {
		r.logger.Warn("next_id behind stored ids, raised",
			zap.Int("stored", nextID), zap.Int("next_id", maxID+1))
		nextID = maxID + 1
	}

	r.materials = materials
	r.order = order
	r.nextID = nextID

	r.logger.Info("Catalog loaded", zap.Int("materials", len(order)), zap.Int("next_id", nextID))
	return nil
}

// Save writes the in-memory catalog to the backing file.
func (r *JSONFileMaterialRepository) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked()
}

// Create assigns the next id to material and persists it.
func (r *JSONFileMaterialRepository) Create(material models.Material) (models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := material.Clone()
	m.ID = r.nextID
	r.materials[m.ID] = m
	r.order = append(r.order, m.ID)
	r.nextID++

	if err := r.saveLocked(); err != nil {
		delete(r.materials, m.ID)
		r.order = r.order[:len(r.order)-1]
		r.nextID--
		return models.Material{}, err
	}
	return m.Clone(), nil
}

// GetAll returns every material in insertion order.
func (r *JSONFileMaterialRepository) GetAll() ([]models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Material, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.materials[id].Clone())
	}
	return out, nil
}

// GetByID retrieves a material by its ID.
func (r *JSONFileMaterialRepository) GetByID(id int) (models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.materials[id]
	if !ok {
		return models.Material{}, ErrMaterialNotFound
	}
	return m.Clone(), nil
}

// Update merges the supplied fields of patch over the stored material.
func (r *JSONFileMaterialRepository) Update(id int, patch models.MaterialPatch) (models.Material, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.materials[id]
	if !ok {
		return models.Material{}, ErrMaterialNotFound
	}
	if patch.IsEmpty() {
		return prev.Clone(), nil
	}
	updated := patch.Apply(prev)
	updated.ID = id
	r.materials[id] = updated

	if err := r.saveLocked(); err != nil {
		r.materials[id] = prev
		return models.Material{}, err
	}
	return updated.Clone(), nil
}

// Delete removes a material by its ID. Its id is never handed out again.
func (r *JSONFileMaterialRepository) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.materials[id]
	if !ok {
		return ErrMaterialNotFound
	}
	idx := indexOf(r.order, id)
	delete(r.materials, id)
	r.order = append(r.order[:idx:idx], r.order[idx+1:]...)

	if err := r.saveLocked(); err != nil {
		r.materials[id] = prev
		r.order = append(r.order[:idx:idx], append([]int{id}, r.order[idx:]...)...)
		return err
	}
	return nil
}

func (r *JSONFileMaterialRepository) resetLocked() error {
	r.materials = map[int]models.Material{}
	r.order = []int{}
	r.nextID = 1
	return r.saveLocked()
}

func (r *JSONFileMaterialRepository) saveLocked() error {
	snap := snapshot{Materials: make([]models.Material, 0, len(r.order)), NextID: r.nextID}
	for _, id := range r.order {
		snap.Materials = append(snap.Materials, r.materials[id])
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := writeFileAtomic(r.path, data); err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrPersistence, r.path, err)
	}
	return nil
}

func encodeSnapshot(s snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// entryID extracts the id of a raw catalog entry.
func entryID(entry json.RawMessage) (int, bool) {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(entry, &head); err != nil {
		return 0, false
	}
	return parsePositiveInt(head.ID)
}

// parsePositiveInt accepts only a bare JSON integer greater than zero.
// Strings, floats and exponents are rejected.
func parsePositiveInt(raw json.RawMessage) (int, bool) {
	n, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/episim/internal/epidemic"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// ErrRunNotFound is returned when a run id has no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Params      epidemic.Params    `json:"params"`
	ValidLength int                `json:"valid_length"`
	Metrics     map[string]float64 `json:"metrics"`
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("sir_%d_%s", now.Unix(), uuid.NewString()[:8])
}

// Save writes one run directory holding metadata.json and the full
// fixed-length trajectory as CSV.
func (s *Store) Save(p epidemic.Params, tr *epidemic.Trajectory) (string, error) {
	now := time.Now()
	runID := newRunID(now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		Params:      p,
		ValidLength: tr.ValidLength,
		Metrics:     tr.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), tr); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, tr *epidemic.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := WriteCSV(w, tr); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV emits a step,S,I,R header and one row per buffer entry.
func WriteCSV(w *csv.Writer, tr *epidemic.Trajectory) error {
	if err := w.Write([]string{"step", "S", "I", "R"}); err != nil {
		return err
	}

	for i := range tr.Time {
		row := []string{
			strconv.Itoa(tr.Time[i]),
			formatFloat(tr.S[i]),
			formatFloat(tr.I[i]),
			formatFloat(tr.R[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrajectory rebuilds a saved trajectory, including its ValidLength.
func (s *Store) LoadTrajectory(runID string) (*epidemic.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 4

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: read trajectory for %s: %w", runID, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: empty trajectory file for %s", runID)
	}

	n := len(records) - 1
	tr := &epidemic.Trajectory{
		Time:        make([]int, n),
		S:           make([]float64, n),
		I:           make([]float64, n),
		R:           make([]float64, n),
		ValidLength: meta.ValidLength,
		Metrics:     meta.Metrics,
	}

	for i, record := range records[1:] {
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
		}
		tr.Time[i] = step

		for j, dst := range [][]float64{tr.S, tr.I, tr.R} {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
			}
			dst[i] = v
		}
	}

	if tr.ValidLength > n {
		tr.ValidLength = n
	}

	return tr, nil
}

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

	"github.com/san-kum/lorenzsim/internal/dynamo"
	"github.com/san-kum/lorenzsim/internal/ensemble"
	"github.com/san-kum/lorenzsim/internal/trajectory"
)

// ErrNoTrajectory is returned for a member that failed and was not stored.
var ErrNoTrajectory = errors.New("storage: trajectory not stored")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type Tolerance struct {
	Rel float64 `json:"rel"`
	Abs float64 `json:"abs"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	System     string             `json:"system"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     map[string]float64 `json:"params"`
	Base       []float64          `json:"base"`
	Axis       int                `json:"axis"`
	Epsilon    float64            `json:"epsilon"`
	Count      int                `json:"count"`
	Horizon    float64            `json:"horizon"`
	Dt         float64            `json:"dt"`
	Integrator string             `json:"integrator"`
	Tolerance  Tolerance          `json:"tolerance"`
	Policy     string             `json:"policy"`
	ColorFrom  string             `json:"color_from"`
	ColorTo    string             `json:"color_to"`
	Stored     []int              `json:"stored"`
	Failures   map[int]string     `json:"failures,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

func trajectoryFile(index int) string {
	return fmt.Sprintf("trajectory_%02d.csv", index)
}

// Save writes the batch under a new run directory and returns its id.
// meta.ID, Timestamp, Count, Stored and Failures are filled in from the
// batch.
func (s *Store) Save(meta RunMetadata, batch *ensemble.Batch) (id string, err error) {
	if meta.System == "" {
		meta.System = "lorenz"
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.System, now.UnixNano())
	meta.Timestamp = now
	meta.Count = len(batch.Members)
	meta.Stored = nil
	meta.Failures = nil
	for i, ferr := range batch.Failures {
		if meta.Failures == nil {
			meta.Failures = make(map[int]string)
		}
		meta.Failures[i] = ferr.Error()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	// A run is listed only if complete.
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	for i, tr := range batch.Members {
		if tr == nil {
			continue
		}
		if err := writeTrajectory(filepath.Join(runDir, trajectoryFile(i)), tr); err != nil {
			return "", fmt.Errorf("member %d: %w", i, err)
		}
		meta.Stored = append(meta.Stored, i)
	}

	if err := writeMetadata(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeMetadata(path string, meta RunMetadata) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrajectory(path string, tr *trajectory.Trajectory) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	header := []string{"time", "x", "y", "z"}
	if len(tr.States) > 0 && len(tr.States[0]) != 3 {
		header = []string{"time"}
		for i := range tr.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, st := range tr.States {
		if len(st)+1 != len(header) {
			return fmt.Errorf("sample %d has %d components, want %d", i, len(st), len(header)-1)
		}
		row[0] = strconv.FormatFloat(tr.Times[i], 'g', -1, 64)
		for j, v := range st {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns stored runs, oldest first. Unreadable directories are
// skipped.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// Latest returns the most recent run.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs in %s", s.baseDir)
	}
	return &runs[len(runs)-1], nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads one member back.
func (s *Store) LoadTrajectory(meta *RunMetadata, index int) (*trajectory.Trajectory, error) {
	path := filepath.Join(s.baseDir, meta.ID, trajectoryFile(index))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: member %d of %s", ErrNoTrajectory, index, meta.ID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: no samples", path)
	}

	tr := &trajectory.Trajectory{
		Dt:      meta.Dt,
		Horizon: meta.Horizon,
		Times:   make([]float64, 0, len(records)-1),
		States:  make([]dynamo.State, 0, len(records)-1),
	}
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", path, line+2, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, dynamo.State(vals[1:]))
	}
	return tr, nil
}

// LoadBatch reads every stored member in index order.
func (s *Store) LoadBatch(runID string) (*RunMetadata, []*trajectory.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	trajs := make([]*trajectory.Trajectory, 0, len(meta.Stored))
	for _, i := range meta.Stored {
		tr, err := s.LoadTrajectory(meta, i)
		if err != nil {
			return nil, nil, err
		}
		trajs = append(trajs, tr)
	}
	return meta, trajs, nil
}

// Package storage keeps recorded runs on disk: one directory per run with
// a metadata.json and a trace.csv of every snapshot.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/kinelab/internal/dynamo"
)

// ErrRunNotFound is returned when a run ID has no metadata on disk.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

// fixed trace columns, followed by the sorted quantity names
var baseColumns = []string{
	"time", "phase", "progress", "position", "velocity", "acceleration",
	"apparent_weight", "gforce", "weight_state", "collision_progress",
}

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
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	FPS       int                `json:"fps"`
	Speed     float64            `json:"speed"`
	Duration  float64            `json:"duration"`
	Frames    int                `json:"frames"`
	Params    map[string]float64 `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its ID. A blank meta.ID is generated from
// the scene name and the current time.
func (s *Store) Save(meta RunMetadata, snaps []dynamo.Snapshot) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = s.newID(meta.Scene, meta.Timestamp)
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrace(csvFile, snaps); err != nil {
		return "", fmt.Errorf("write trace: %w", err)
	}
	return meta.ID, nil
}

func (s *Store) newID(scene string, ts time.Time) string {
	base := fmt.Sprintf("%s_%d", scene, ts.Unix())
	id := base
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.baseDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}
}

// WriteTrace writes snapshots as CSV with one column per fixed field and
// one per quantity seen anywhere in the trace.
func WriteTrace(out io.Writer, snaps []dynamo.Snapshot) error {
	w := csv.NewWriter(out)

	names := quantityNames(snaps)
	header := append(append([]string{}, baseColumns...), names...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range snaps {
		row := []string{
			formatFloat(snap.Time),
			snap.Phase,
			formatFloat(snap.Progress),
			formatFloat(snap.Position),
			formatFloat(snap.Velocity),
			formatFloat(snap.Acceleration),
			formatFloat(snap.ApparentWeight),
			formatFloat(snap.GForce),
			snap.WeightState,
			formatFloat(snap.CollisionProgress),
		}
		for _, name := range names {
			v, ok := snap.Quantities[name]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func quantityNames(snaps []dynamo.Snapshot) []string {
	seen := make(map[string]bool)
	for _, snap := range snaps {
		for name := range snap.Quantities {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

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
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrace reads a run's snapshots back. Scene, bodies and empty quantity
// cells are not restored.
func (s *Store) LoadTrace(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadTrace(file)
}

// ReadTrace parses CSV written by WriteTrace.
func ReadTrace(in io.Reader) ([]dynamo.Snapshot, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []dynamo.Snapshot{}, nil
	}

	header := records[0]
	if len(header) < len(baseColumns) {
		return nil, fmt.Errorf("trace header has %d columns, want at least %d", len(header), len(baseColumns))
	}
	names := header[len(baseColumns):]

	snaps := make([]dynamo.Snapshot, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(baseColumns) {
			continue
		}
		num := func(i int) float64 {
			v, _ := strconv.ParseFloat(record[i], 64)
			return v
		}
		snap := dynamo.Snapshot{
			Time:              num(0),
			Phase:             record[1],
			Progress:          num(2),
			Position:          num(3),
			Velocity:          num(4),
			Acceleration:      num(5),
			ApparentWeight:    num(6),
			GForce:            num(7),
			WeightState:       record[8],
			CollisionProgress: num(9),
			Quantities:        make(map[string]float64, len(names)),
		}
		for j, name := range names {
			col := len(baseColumns) + j
			if col >= len(record) || record[col] == "" {
				continue
			}
			v, err := strconv.ParseFloat(record[col], 64)
			if err != nil {
				continue
			}
			snap.Quantities[name] = v
		}
		snaps = append(snaps, snap)
	}

	return snaps, nil
}

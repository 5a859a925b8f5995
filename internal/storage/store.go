// Package storage persists simulated runs as one directory per run:
// metadata.json, config.yaml, ticks.csv, frames.csv and rods.json.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rodsphere/internal/config"
	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/orbit"
	"github.com/san-kum/rodsphere/internal/placer"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	ticksFile    = "ticks.csv"
	framesFile   = "frames.csv"
	rodsFile     = "rods.json"
)

var (
	tickHeader  = []string{"at_ms", "action", "rod_id", "population", "delay_ms", "phase", "intensity", "reverse", "cycle"}
	frameHeader = []string{"at_ms", "intensity", "population", "angle"}
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Timestamp       time.Time          `json:"timestamp"`
	Seed            int64              `json:"seed"`
	Duration        float64            `json:"duration"`
	FrameRate       int                `json:"frame_rate"`
	Ticks           int                `json:"ticks"`
	Frames          int                `json:"frames"`
	FinalPopulation int                `json:"final_population"`
	Pose            orbit.Pose         `json:"pose"`
	Angle           float64            `json:"angle"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Length is the run duration as a time.Duration.
func (m *RunMetadata) Length() time.Duration {
	return time.Duration(math.Round(m.Duration * float64(time.Second)))
}

// Save writes a run under a fresh directory named after name and the
// current time, and returns the run ID.
func (s *Store) Save(name string, cfg *config.Config, fps int, res *engine.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	now := s.now()
	runID, runDir, err := s.reserve(name, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:              runID,
		Name:            name,
		Timestamp:       now,
		Seed:            res.Seed,
		Duration:        res.Duration.Seconds(),
		FrameRate:       fps,
		Ticks:           len(res.Ticks),
		Frames:          len(res.Frames),
		FinalPopulation: res.FinalPopulation(),
		Pose:            res.Pose,
		Angle:           res.Angle,
		Metrics:         res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if cfg != nil {
		if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
			return "", err
		}
	}
	if err := writeJSON(filepath.Join(runDir, rodsFile), res.FinalRods); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, ticksFile), func(w *csv.Writer) error {
		return WriteTicksCSV(w, res.Ticks)
	}); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, framesFile), func(w *csv.Writer) error {
		return writeFrames(w, res.Frames)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) reserve(name string, now time.Time) (string, string, error) {
	if name == "" {
		name = "run"
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
	}
}

// List returns every readable run, oldest first.
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
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := s.readJSON(runID, metadataFile, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	path, err := s.path(runID, configFile)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func (s *Store) LoadRods(runID string) ([]placer.Rod, error) {
	var rods []placer.Rod
	if err := s.readJSON(runID, rodsFile, &rods); err != nil {
		return nil, err
	}
	return rods, nil
}

func (s *Store) LoadTicks(runID string) ([]engine.TickRecord, error) {
	records, err := s.readCSV(runID, ticksFile)
	if err != nil {
		return nil, err
	}

	ticks := make([]engine.TickRecord, 0, len(records))
	for i, rec := range records {
		if len(rec) < len(tickHeader) {
			return nil, fmt.Errorf("storage: %s line %d: want %d fields, got %d", ticksFile, i+2, len(tickHeader), len(rec))
		}
		var (
			t    engine.TickRecord
			errs []error
		)
		t.At = parseMillis(rec[0], &errs)
		t.Action = rec[1]
		t.RodID = parseUint(rec[2], &errs)
		t.Population = int(parseInt(rec[3], &errs))
		t.Delay = parseMillis(rec[4], &errs)
		t.Phase = parseFloat(rec[5], &errs)
		t.Intensity = parseFloat(rec[6], &errs)
		t.Reverse = rec[7] == "true"
		t.Cycle = parseInt(rec[8], &errs)
		if err := errors.Join(errs...); err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", ticksFile, i+2, err)
		}
		ticks = append(ticks, t)
	}
	return ticks, nil
}

func (s *Store) LoadFrames(runID string) ([]engine.FrameRecord, error) {
	records, err := s.readCSV(runID, framesFile)
	if err != nil {
		return nil, err
	}

	frames := make([]engine.FrameRecord, 0, len(records))
	for i, rec := range records {
		if len(rec) < len(frameHeader) {
			return nil, fmt.Errorf("storage: %s line %d: want %d fields, got %d", framesFile, i+2, len(frameHeader), len(rec))
		}
		var errs []error
		f := engine.FrameRecord{
			At:         parseMillis(rec[0], &errs),
			Intensity:  parseFloat(rec[1], &errs),
			Population: int(parseInt(rec[2], &errs)),
			Angle:      parseFloat(rec[3], &errs),
		}
		if err := errors.Join(errs...); err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", framesFile, i+2, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func (s *Store) path(runID, file string) (string, error) {
	if runID == "" || runID != filepath.Base(runID) {
		return "", fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	dir := filepath.Join(s.baseDir, runID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return "", err
	}
	return filepath.Join(dir, file), nil
}

func (s *Store) readJSON(runID, file string, v any) error {
	path, err := s.path(runID, file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) readCSV(runID, file string) ([][]string, error) {
	path, err := s.path(runID, file)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
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

func writeCSVFile(path string, fill func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteTicksCSV writes a header row and one row per tick. It does not flush.
func WriteTicksCSV(w *csv.Writer, ticks []engine.TickRecord) error {
	if err := w.Write(tickHeader); err != nil {
		return err
	}
	for _, t := range ticks {
		row := []string{
			formatMillis(t.At),
			t.Action,
			strconv.FormatUint(t.RodID, 10),
			strconv.Itoa(t.Population),
			formatMillis(t.Delay),
			formatFloat(t.Phase),
			formatFloat(t.Intensity),
			strconv.FormatBool(t.Reverse),
			strconv.FormatInt(t.Cycle, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeFrames(w *csv.Writer, frames []engine.FrameRecord) error {
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, f := range frames {
		row := []string{
			formatMillis(f.At),
			formatFloat(f.Intensity),
			strconv.Itoa(f.Population),
			formatFloat(f.Angle),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// Durations are stored in milliseconds with microsecond precision.
func formatMillis(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Microseconds())/1000, 'f', 3, 64)
}

func parseMillis(s string, errs *[]error) time.Duration {
	ms := parseFloat(s, errs)
	return time.Duration(math.Round(ms*1000)) * time.Microsecond
}

func parseFloat(s string, errs *[]error) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func parseInt(s string, errs *[]error) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

func parseUint(s string, errs *[]error) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		*errs = append(*errs, err)
	}
	return v
}

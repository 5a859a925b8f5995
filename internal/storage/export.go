package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/rodsphere/internal/engine"
	"github.com/san-kum/rodsphere/internal/placer"
)

type ExportData struct {
	Run   RunMetadata         `json:"run"`
	Ticks []engine.TickRecord `json:"ticks"`
	Rods  []placer.Rod        `json:"rods"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	ticks, err := s.LoadTicks(runID)
	if err != nil {
		return nil, err
	}
	rods, err := s.LoadRods(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *meta, Ticks: ticks, Rods: rods}, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportCSV(w io.Writer, ticks []engine.TickRecord) error {
	cw := csv.NewWriter(w)
	if err := WriteTicksCSV(cw, ticks); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

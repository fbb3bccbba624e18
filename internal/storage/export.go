package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/episim/internal/epidemic"
)

type ExportData struct {
	ID          string               `json:"id"`
	Params      epidemic.Params      `json:"params"`
	R0          string               `json:"r0"`
	ValidLength int                  `json:"valid_length"`
	Steps       int                  `json:"steps"`
	Metrics     map[string]float64   `json:"metrics"`
	Trajectory  *epidemic.Trajectory `json:"trajectory"`
}

// ExportJSON writes a saved run and its trajectory as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, tr *epidemic.Trajectory) error {
	data := ExportData{
		ID:          meta.ID,
		Params:      meta.Params,
		R0:          epidemic.FormatR0(meta.Params.R0()),
		ValidLength: tr.ValidLength,
		Steps:       tr.Len(),
		Metrics:     meta.Metrics,
		Trajectory:  tr,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

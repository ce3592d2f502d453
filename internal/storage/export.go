package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/kinelab/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Steps     int               `json:"steps"`
	Snapshots []dynamo.Snapshot `json:"snapshots"`
}

// ExportJSON writes a run as a single indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, snaps []dynamo.Snapshot) error {
	data := ExportData{
		RunMetadata: meta,
		Steps:       len(snaps),
		Snapshots:   snaps,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile is ExportJSON into a new file at path.
func ExportJSONFile(path string, meta RunMetadata, snaps []dynamo.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, meta, snaps)
}

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"

	"github.com/campfield/lineup-companion/internal/shiftboard"
)

// FiltersSchemaVersion is the shift filter document schema version.
const FiltersSchemaVersion = 2

// ShiftFiltersDoc is the persisted volunteer shift filter selection,
// stored as one versioned JSON document and rewritten whole on every
// change.
type ShiftFiltersDoc struct {
	SchemaVersion int                `json:"schema_version"`
	Filters       shiftboard.Filters `json:"filters"`
}

// LoadShiftFilters reads the persisted filter document. When the file is
// missing, corrupt or from another schema version, defaults are returned
// with firstUse set so the caller can seed role ids from the viewer's
// interested roles.
func LoadShiftFilters(path string, defaults shiftboard.Filters) (f shiftboard.Filters, firstUse bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: failed to read shift filters: %v, using defaults", err)
		}
		return defaults, true
	}

	var doc ShiftFiltersDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		log.Printf("Warning: shift filter file is corrupt: %v, using defaults", err)
		return defaults, true
	}

	if doc.SchemaVersion != FiltersSchemaVersion {
		log.Printf("Warning: shift filter schema version mismatch (got %d, expected %d), using defaults",
			doc.SchemaVersion, FiltersSchemaVersion)
		return defaults, true
	}

	if doc.Filters.RoleIDs == nil {
		doc.Filters.RoleIDs = []int64{}
	}

	return doc.Filters, false
}

// SaveShiftFilters writes the filter document to disk atomically.
func SaveShiftFilters(path string, f shiftboard.Filters) error {
	if f.RoleIDs == nil {
		f.RoleIDs = []int64{}
	}
	return writeJSONAtomic(path, ShiftFiltersDoc{
		SchemaVersion: FiltersSchemaVersion,
		Filters:       f,
	})
}

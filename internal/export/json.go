package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/countdown/internal/countdown"
	"github.com/sadopc/countdown/internal/store"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Completed  int       `json:"completed"`
	Runs       []jsonRun `json:"runs"`
}

type jsonRun struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at,omitempty"`
	ElapsedSec int64  `json:"elapsed_seconds"`
	Elapsed    string `json:"elapsed"`
	LengthSec  int64  `json:"length_seconds"`
}

// ToJSON writes the run history to path as a single indented document.
func ToJSON(runs []store.Run, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(runs),
		Runs:       []jsonRun{},
	}

	for _, r := range runs {
		if r.Status == store.StatusCompleted {
			export.Completed++
		}
		export.Runs = append(export.Runs, jsonRun{
			ID:         r.ID,
			Status:     r.Status,
			StartedAt:  r.StartedAt.Local().Format(time.RFC3339),
			EndedAt:    endedAt(r),
			ElapsedSec: r.Elapsed,
			Elapsed:    countdown.Format(int(r.Elapsed)),
			LengthSec:  r.Duration,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

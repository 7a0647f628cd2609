package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/countdown/internal/countdown"
	"github.com/sadopc/countdown/internal/store"
)

var csvHeader = []string{"ID", "Status", "Start", "End", "Elapsed (s)", "Elapsed", "Length"}

// ToCSV writes the run history to path, one row per run.
func ToCSV(runs []store.Run, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range runs {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.Status,
			r.StartedAt.Local().Format(time.RFC3339),
			endedAt(r),
			fmt.Sprintf("%d", r.Elapsed),
			countdown.Format(int(r.Elapsed)),
			countdown.Format(int(r.Duration)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func endedAt(r store.Run) string {
	if r.EndedAt == nil {
		return ""
	}
	return r.EndedAt.Local().Format(time.RFC3339)
}

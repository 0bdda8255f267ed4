package history

import (
	"encoding/csv"
	"io"

	"tgblast/internal/broadcast"
)

// WriteCSV renders results as tabular data with the stable header
// "Chat ID,Status,Details".
func WriteCSV(w io.Writer, results []broadcast.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Chat ID", "Status", "Details"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := cw.Write([]string{r.ChatID, r.Outcome.Kind.Status(), r.Outcome.Detail}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

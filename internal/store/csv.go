package store

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ChannelNamer resolves a channel number to its display name for CSV
// export; internal/registry.Registry satisfies this trivially.
type ChannelNamer interface {
	GetName(channel int) string
}

// Save writes the store to path as CSV: header row
// "Number,Name,Timestamp,Text" followed by one row per line. Quoting
// follows RFC 4180 via encoding/csv, fixing the "no escaping of embedded
// quotes" limitation spec §9 flags in the original implementation.
// sessionID, if non-empty, is written as a leading "# session=<id>"
// comment line before the header (additive; does not change the header
// row itself).
func (s *Store) Save(path string, namer ChannelNamer, sessionID string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if sessionID != "" {
		if _, err := fmt.Fprintf(f, "# session=%s\n", sessionID); err != nil {
			return err
		}
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Number", "Name", "Timestamp", "Text"}); err != nil {
		return err
	}
	for _, line := range s.lines {
		name := ""
		if namer != nil {
			name = namer.GetName(line.Channel)
		}
		row := []string{
			fmt.Sprintf("%d", line.Channel),
			name,
			fmt.Sprintf("%.6f", line.Timestamp),
			line.Text(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

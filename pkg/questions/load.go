package questions

import (
	"encoding/json"
	"fmt"
	"os"
)

// questionFile matches the import format of the question data files:
// a JSON array of objects with text, category, and four options, the
// first of which is the correct one.
type questionFile struct {
	Text     string   `json:"text"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
}

// LoadFromFiles reads question JSON files and returns the parsed
// questions without ids; the repository assigns ids on insert.
func LoadFromFiles(paths []string) ([]Question, error) {
	var loaded []Question
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", path, err)
		}

		var entries []questionFile
		if err := json.Unmarshal(b, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v", path, err)
		}

		for _, entry := range entries {
			if len(entry.Options) != 4 {
				return nil, fmt.Errorf("question %q in %s has %d options, want 4", entry.Text, path, len(entry.Options))
			}
			q := Question{
				Text:     entry.Text,
				Category: entry.Category,
				Options:  [4]string{entry.Options[0], entry.Options[1], entry.Options[2], entry.Options[3]},
			}
			if err := q.Validate(); err != nil {
				return nil, fmt.Errorf("invalid question in %s: %v", path, err)
			}
			loaded = append(loaded, q)
		}
	}
	return loaded, nil
}

package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a noisy annotation string with its expected normalization.
// Exactly one of Labels or Error is meaningful: Error names the expected
// model.ErrorKind, Labels the expected codes when Error is empty.
type CorpusEntry struct {
	Raw         string `json:"raw"`
	Labels      []int  `json:"labels"`
	Exclude     []int  `json:"exclude"`
	Error       string `json:"error"`
	Description string `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

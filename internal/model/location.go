package model

import (
	"bytes"
	"encoding/json"
	"iter"

	"github.com/rotisserie/eris"
)

// LocationStats aggregates the incidents recorded for one barangay within a station.
type LocationStats struct {
	Barangay          string `json:"barangay"`
	Station           string `json:"station"`
	TotalAccidents    int    `json:"total_accidents"`
	FatalAccidents    int    `json:"fatal_accidents"`
	IsAccidentProne   bool   `json:"is_accident_prone"`
	MostCommonOffense string `json:"most_common_offense"`
}

// LocationTable is the artifact produced by the deriver and served by the lookup service.
type LocationTable struct {
	Places      []string   `json:"places"` // accident-prone keys in display casing
	Threshold   int        `json:"threshold"`
	TotalPlaces int        `json:"total_places"`
	Statistics  Statistics `json:"statistics"`
}

// Statistics maps location keys to their stats and remembers insertion order,
// so listings can break ties the way the table was written.
type Statistics struct {
	keys  []string
	byKey map[string]LocationStats
}

// Set stores stats under key. A new key is appended; an existing key keeps its position.
func (s *Statistics) Set(key string, stats LocationStats) {
	if s.byKey == nil {
		s.byKey = make(map[string]LocationStats)
	}
	if _, ok := s.byKey[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.byKey[key] = stats
}

// Get returns the stats for key.
func (s Statistics) Get(key string) (LocationStats, bool) {
	st, ok := s.byKey[key]
	return st, ok
}

// Len returns the number of locations.
func (s Statistics) Len() int {
	return len(s.keys)
}

// Keys returns the location keys in insertion order.
func (s Statistics) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// All iterates key/stats pairs in insertion order.
func (s Statistics) All() iter.Seq2[string, LocationStats] {
	return func(yield func(string, LocationStats) bool) {
		for _, k := range s.keys {
			if !yield(k, s.byKey[k]) {
				return
			}
		}
	}
}

// MarshalJSON writes the statistics as a JSON object in insertion order.
func (s Statistics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, eris.Wrapf(err, "statistics: marshal key %q", k)
		}
		vb, err := json.Marshal(s.byKey[k])
		if err != nil {
			return nil, eris.Wrapf(err, "statistics: marshal %q", k)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the document's key order.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "statistics: read opening token")
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return eris.Errorf("statistics: expected object, got %v", tok)
	}

	var out Statistics
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "statistics: read key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return eris.Errorf("statistics: expected string key, got %v", keyTok)
		}
		var st LocationStats
		if err := dec.Decode(&st); err != nil {
			return eris.Wrapf(err, "statistics: decode %q", key)
		}
		out.Set(key, st)
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "statistics: read closing token")
	}

	*s = out
	return nil
}

// ModelMetadata describes the offline classifier and the derivation it came from.
type ModelMetadata struct {
	ModelType               string  `json:"model_type"`
	Accuracy                float64 `json:"accuracy"`
	TrainingSamples         int     `json:"training_samples"`
	TestSamples             int     `json:"test_samples"`
	FeatureCount            int     `json:"feature_count"`
	AccidentProneThreshold  int     `json:"accident_prone_threshold"`
	TotalAccidentProneAreas int     `json:"total_accident_prone_areas"`
}

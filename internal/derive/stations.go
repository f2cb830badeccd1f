package derive

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/accident-risk/internal/model"
)

//go:embed stations.yaml
var stationsYAML []byte

// StationNormalizer maps station spellings to one canonical name.
type StationNormalizer struct {
	synonyms map[string]string
}

// DefaultStations returns the normalizer built from the embedded synonym table.
func DefaultStations() (*StationNormalizer, error) {
	return ParseStations(stationsYAML)
}

// ParseStations builds a normalizer from YAML mapping canonical names to
// lists of lowercase variants.
func ParseStations(data []byte) (*StationNormalizer, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "derive: parse station synonyms")
	}

	n := &StationNormalizer{
		synonyms: make(map[string]string),
	}
	for canonical, variants := range raw {
		for _, v := range variants {
			v = model.NormalizeName(v)
			if prev, ok := n.synonyms[v]; ok && prev != canonical {
				return nil, eris.Errorf("derive: station %q maps to both %q and %q", v, prev, canonical)
			}
			n.synonyms[v] = canonical
		}
	}
	return n, nil
}

// Normalize returns the canonical station for s. Unknown stations are
// title-cased; blank input stays blank.
func (n *StationNormalizer) Normalize(s string) string {
	key := model.NormalizeName(s)
	if key == "" {
		return ""
	}
	if canonical, ok := n.synonyms[key]; ok {
		return canonical
	}
	return model.TitleCase(key)
}

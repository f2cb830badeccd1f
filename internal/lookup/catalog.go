package lookup

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/accident-risk/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog holds the static advice served alongside lookups.
type Catalog struct {
	GeneralTips  []string      `yaml:"general_tips"`
	CriticalTips []string      `yaml:"critical_tips"`
	Routes       []model.Route `yaml:"routes"`
	RouteNote    string        `yaml:"route_note"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a catalog document and checks it is usable.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "lookup: parse catalog")
	}
	if len(c.GeneralTips) == 0 {
		return nil, eris.New("lookup: catalog has no general tips")
	}
	for i, r := range c.Routes {
		if _, ok := model.ParseRiskLevel(string(r.RiskLevel)); !ok {
			return nil, eris.Errorf("lookup: route %d has unknown risk level %q", i, r.RiskLevel)
		}
	}
	return &c, nil
}

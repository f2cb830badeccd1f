// Package lookup answers location risk queries from the derived location table.
package lookup

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"

	"github.com/sells-group/accident-risk/internal/artifact"
	"github.com/sells-group/accident-risk/internal/model"
)

// DefaultTipsLevel is used when a safety-tips request names no risk level.
const DefaultTipsLevel = string(model.RiskHigh)

// UnknownBarangay is echoed when a route request names no barangay.
const UnknownBarangay = "Unknown"

// Service is the read-only lookup context built once at startup. All methods
// are safe for concurrent use because nothing is mutated after New returns.
type Service struct {
	table       model.LocationTable
	prone       map[string]bool
	meta        model.ModelMetadata
	features    int
	modelLoaded bool
	catalog     *Catalog
	clock       clockwork.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for response timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithCatalog replaces the embedded tips and routes catalog.
func WithCatalog(c *Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// New builds a Service from a loaded artifact bundle.
func New(b *artifact.Bundle, opts ...Option) (*Service, error) {
	if b == nil {
		return nil, eris.New("lookup: nil artifact bundle")
	}

	s := &Service{
		table:       b.Table,
		prone:       make(map[string]bool, len(b.Table.Places)),
		meta:        b.Metadata,
		features:    len(b.Features),
		modelLoaded: b.Model != nil,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		c, err := DefaultCatalog()
		if err != nil {
			return nil, err
		}
		s.catalog = c
	}

	// Membership is the places list (stored in display casing) plus any
	// statistics entry flagged prone.
	for _, p := range b.Table.Places {
		s.prone[model.NormalizeName(p)] = true
	}
	for key, st := range b.Table.Statistics.All() {
		if st.IsAccidentProne {
			s.prone[key] = true
		}
	}
	return s, nil
}

// CheckLocation assesses the risk of a barangay within a station. An empty
// station is looked up as "unknown".
func (s *Service) CheckLocation(barangay, station string) (model.Assessment, error) {
	barangay = model.NormalizeName(barangay)
	station = model.NormalizeName(station)
	if barangay == "" {
		return model.Assessment{}, required("barangay")
	}
	if station == "" {
		station = model.UnknownStation
	}

	key := model.LocationKey(barangay, station)
	prone := s.prone[key]
	st, ok := s.table.Statistics.Get(key)
	offense := st.MostCommonOffense
	if !ok || offense == "" {
		offense = "Unknown"
	}

	level, confidence := model.ClassifyRisk(prone, st.FatalAccidents)
	return model.Assessment{
		Barangay:        model.TitleCase(barangay),
		Station:         model.TitleCase(station),
		IsAccidentProne: prone,
		AccidentCount:   st.TotalAccidents,
		FatalAccidents:  st.FatalAccidents,
		RiskLevel:       level,
		Confidence:      confidence,
		CommonOffense:   offense,
		Message:         assessmentMessage(barangay, prone, level, st.TotalAccidents, st.FatalAccidents),
		Timestamp:       s.clock.Now(),
	}, nil
}

func assessmentMessage(barangay string, prone bool, level model.RiskLevel, total, fatal int) string {
	name := strings.ToUpper(barangay)
	var msg string
	switch {
	case prone:
		msg = fmt.Sprintf("⚠️ WARNING: %s is an accident-prone area with %d recorded incidents!", name, total)
	case level == model.RiskCritical:
		msg = fmt.Sprintf("⚠️ WARNING: %s is below the accident-prone threshold with %d recorded incidents but is rated CRITICAL!", name, total)
	default:
		return fmt.Sprintf("✓ %s has low accident risk with %d incidents recorded.", name, total)
	}
	if fatal > 0 {
		msg += fmt.Sprintf(" %d fatal accidents recorded.", fatal)
	}
	return msg
}

// SafetyTips returns driving advice. Exactly "CRITICAL" prepends the
// heightened-alert tips; any other value, including other casings, gets the
// general list. The level is echoed back.
func (s *Service) SafetyTips(riskLevel string) model.SafetyTips {
	if strings.TrimSpace(riskLevel) == "" {
		riskLevel = DefaultTipsLevel
	}

	level, _ := model.ParseRiskLevel(riskLevel)
	tips := make([]string, 0, len(s.catalog.CriticalTips)+len(s.catalog.GeneralTips))
	if level == model.RiskCritical {
		tips = append(tips, s.catalog.CriticalTips...)
	}
	tips = append(tips, s.catalog.GeneralTips...)

	return model.SafetyTips{Tips: tips, RiskLevel: riskLevel}
}

// AlternativeRoutes returns the canned route suggestions. The barangay is
// only echoed.
func (s *Service) AlternativeRoutes(currentBarangay string) model.RouteSuggestions {
	if strings.TrimSpace(currentBarangay) == "" {
		currentBarangay = UnknownBarangay
	}
	return model.RouteSuggestions{
		CurrentBarangay: currentBarangay,
		Routes:          slices.Clone(s.catalog.Routes),
		Note:            s.catalog.RouteNote,
	}
}

// Statistics summarizes the loaded table and classifier metadata.
func (s *Service) Statistics() model.Overview {
	return model.Overview{
		TotalPlaces:        s.table.TotalPlaces,
		AccidentProneCount: len(s.prone),
		Threshold:          s.table.Threshold,
		ModelAccuracy:      s.meta.Accuracy,
		TrainingSamples:    s.meta.TrainingSamples,
		TestSamples:        s.meta.TestSamples,
	}
}

// Barangays lists every location, or only accident-prone ones, ordered by
// total accidents descending. Ties keep table order.
func (s *Service) Barangays(proneOnly bool) model.BarangayList {
	list := make([]model.BarangaySummary, 0, s.table.Statistics.Len())
	for key, st := range s.table.Statistics.All() {
		prone := s.prone[key]
		if proneOnly && !prone {
			continue
		}

		name := st.Barangay
		if strings.TrimSpace(name) == "" {
			name = key
		}
		station := st.Station
		if strings.TrimSpace(station) == "" {
			station = "Unknown"
		}
		list = append(list, model.BarangaySummary{
			Name:            model.TitleCase(strings.TrimSpace(name)),
			Station:         model.TitleCase(strings.TrimSpace(station)),
			IsAccidentProne: prone,
			TotalAccidents:  st.TotalAccidents,
			FatalAccidents:  st.FatalAccidents,
		})
	}

	slices.SortStableFunc(list, func(a, b model.BarangaySummary) int {
		return cmp.Compare(b.TotalAccidents, a.TotalAccidents)
	})
	return model.BarangayList{Barangays: list, TotalCount: len(list)}
}

// Municipalities lists the distinct stations in the table, title-cased and sorted.
func (s *Service) Municipalities() model.MunicipalityList {
	seen := make(map[string]bool)
	var names []string
	for _, st := range s.table.Statistics.All() {
		station := strings.TrimSpace(st.Station)
		if station == "" {
			continue
		}
		name := model.TitleCase(station)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if names == nil {
		names = []string{}
	}
	return model.MunicipalityList{Municipalities: names, TotalCount: len(names)}
}

// BarangaysForMunicipality lists the barangays recorded under a station,
// matched case-insensitively.
func (s *Service) BarangaysForMunicipality(municipality string) (model.MunicipalityBarangays, error) {
	municipality = model.NormalizeName(municipality)
	if municipality == "" {
		return model.MunicipalityBarangays{}, required("municipality")
	}

	seen := make(map[string]bool)
	names := []string{}
	for _, st := range s.table.Statistics.All() {
		if model.NormalizeName(st.Station) != municipality {
			continue
		}
		b := strings.TrimSpace(st.Barangay)
		if b == "" {
			continue
		}
		name := model.TitleCase(b)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return model.MunicipalityBarangays{
		Municipality: model.TitleCase(municipality),
		Barangays:    names,
		TotalCount:   len(names),
	}, nil
}

// Health reports liveness and the size of what was loaded.
func (s *Service) Health() model.Health {
	return model.Health{
		Status:                   "healthy",
		ModelLoaded:              s.modelLoaded,
		ModelType:                s.meta.ModelType,
		ModelAccuracy:            s.meta.Accuracy,
		FeatureCount:             s.features,
		LocationsLoaded:          s.table.Statistics.Len(),
		AccidentProneAreasLoaded: len(s.prone),
		Timestamp:                s.clock.Now(),
	}
}

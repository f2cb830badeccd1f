package model

import "time"

// Assessment is the answer to a location check.
type Assessment struct {
	Barangay        string    `json:"barangay"`
	Station         string    `json:"station"`
	IsAccidentProne bool      `json:"is_accident_prone"`
	AccidentCount   int       `json:"accident_count"`
	FatalAccidents  int       `json:"fatal_accidents"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Confidence      float64   `json:"confidence"`
	CommonOffense   string    `json:"common_offense"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
}

// SafetyTips lists driving advice for a risk level.
type SafetyTips struct {
	Tips      []string `json:"tips"`
	RiskLevel string   `json:"risk_level"`
}

// Route is a canned alternative-route suggestion.
type Route struct {
	Name          string    `json:"route_name" yaml:"route_name"`
	Description   string    `json:"description" yaml:"description"`
	EstimatedTime string    `json:"estimated_time" yaml:"estimated_time"`
	Distance      string    `json:"distance" yaml:"distance"`
	RiskLevel     RiskLevel `json:"risk_level" yaml:"risk_level"`
	Recommended   bool      `json:"recommended" yaml:"recommended"`
}

// RouteSuggestions wraps the routes offered for a barangay.
type RouteSuggestions struct {
	CurrentBarangay string  `json:"current_barangay"`
	Routes          []Route `json:"routes"`
	Note            string  `json:"note"`
}

// Overview summarizes the loaded table and the offline classifier.
type Overview struct {
	TotalPlaces        int     `json:"total_places"`
	AccidentProneCount int     `json:"accident_prone_count"`
	Threshold          int     `json:"threshold"`
	ModelAccuracy      float64 `json:"model_accuracy"`
	TrainingSamples    int     `json:"training_samples"`
	TestSamples        int     `json:"test_samples"`
}

// BarangaySummary is one row of the barangay listing.
type BarangaySummary struct {
	Name            string `json:"name"`
	Station         string `json:"station"`
	IsAccidentProne bool   `json:"is_accident_prone"`
	TotalAccidents  int    `json:"total_accidents"`
	FatalAccidents  int    `json:"fatal_accidents"`
}

// BarangayList is the barangay listing, sorted by total accidents descending.
type BarangayList struct {
	Barangays  []BarangaySummary `json:"barangays"`
	TotalCount int               `json:"total_count"`
}

// MunicipalityList holds the distinct stations present in the table.
type MunicipalityList struct {
	Municipalities []string `json:"municipalities"`
	TotalCount     int      `json:"total_count"`
}

// MunicipalityBarangays holds the barangays recorded under one municipality.
type MunicipalityBarangays struct {
	Municipality string   `json:"municipality"`
	Barangays    []string `json:"barangays"`
	TotalCount   int      `json:"total_count"`
}

// Health reports liveness and what was loaded at startup.
type Health struct {
	Status                   string    `json:"status"`
	ModelLoaded              bool      `json:"model_loaded"`
	ModelType                string    `json:"model_type"`
	ModelAccuracy            float64   `json:"model_accuracy"`
	FeatureCount             int       `json:"feature_count"`
	LocationsLoaded          int       `json:"locations_loaded"`
	AccidentProneAreasLoaded int       `json:"accident_prone_areas_loaded"`
	Timestamp                time.Time `json:"timestamp"`
}

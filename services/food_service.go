package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"nutrilog/common"
	"nutrilog/config"
	"nutrilog/models"
)

// FoodResult is the shape the lookup collaborator yields: descriptive
// metadata plus per-serving nutrients, ready to snapshot into a LogItem.
type FoodResult struct {
	ProviderID         string                `json:"provider_id"`
	Barcode            string                `json:"barcode,omitempty"`
	Name               string                `json:"name"`
	Brand              string                `json:"brand,omitempty"`
	ServingDescription string                `json:"serving_description"`
	Nutrients          models.NutrientVector `json:"nutrients"`
}

// FoodLookup is the external food-database collaborator. Only the output
// shape matters here; the provider behind it is interchangeable.
type FoodLookup interface {
	Search(query string) ([]FoodResult, error)
	Barcode(code string) (*FoodResult, error)
}

// FoodService validates queries, delegates to the provider and caches hits
// in the local catalog. Cache rows are advisory: logged items never join
// back to them.
type FoodService struct {
	lookup FoodLookup
}

func NewFoodService(lookup FoodLookup) *FoodService {
	return &FoodService{lookup: lookup}
}

const minQueryLen = 2

func (s *FoodService) Search(query string) ([]FoodResult, error) {
	query = strings.TrimSpace(query)
	if len(query) < minQueryLen {
		return nil, fmt.Errorf("%w: query must be at least %d characters", common.ErrValidation, minQueryLen)
	}
	results, err := s.lookup.Search(query)
	if err != nil {
		return nil, fmt.Errorf("%w: food search: %v", common.ErrUpstreamUnavailable, err)
	}
	s.cacheResults(results)
	return results, nil
}

func (s *FoodService) Barcode(code string) (*FoodResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: barcode is required", common.ErrValidation)
	}
	result, err := s.lookup.Barcode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: barcode lookup: %v", common.ErrUpstreamUnavailable, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: no food for barcode %s", common.ErrNotFound, code)
	}
	s.cacheResults([]FoodResult{*result})
	return result, nil
}

func (s *FoodService) cacheResults(results []FoodResult) {
	for _, r := range results {
		record := models.FoodRecord{
			ProviderID:         r.ProviderID,
			Barcode:            r.Barcode,
			Name:               r.Name,
			Brand:              r.Brand,
			ServingDescription: r.ServingDescription,
			Nutrients:          r.Nutrients,
		}
		// Best effort; a failed cache write never fails the lookup.
		config.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_id"}},
			UpdateAll: true,
		}).Create(&record)
	}
}

// httpLookup talks to the hosted food-database API over plain HTTP.
type httpLookup struct {
	baseURL string
	appID   string
	appKey  string
	client  *http.Client
}

// NewHTTPLookup reads provider credentials from the environment. With no
// credentials the lookup still constructs but every call reports the
// upstream as unavailable, which the service maps to a 502.
func NewHTTPLookup() FoodLookup {
	base := os.Getenv("FOOD_API_URL")
	if base == "" {
		base = "https://api.edamam.com/api/food-database/v2"
	}
	return &httpLookup{
		baseURL: base,
		appID:   os.Getenv("FOOD_APP_ID"),
		appKey:  os.Getenv("FOOD_APP_KEY"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type parserResponse struct {
	Hints []struct {
		Food struct {
			FoodID    string             `json:"foodId"`
			Label     string             `json:"label"`
			Brand     string             `json:"brand"`
			Nutrients map[string]float64 `json:"nutrients"`
		} `json:"food"`
		Measures []struct {
			Label string `json:"label"`
		} `json:"measures"`
	} `json:"hints"`
}

// providerNutrientKeys maps the provider's nutrient codes onto ours.
var providerNutrientKeys = map[string]string{
	"ENERC_KCAL": models.NutrCalories,
	"PROCNT":     models.NutrProteinG,
	"CHOCDF":     models.NutrCarbsG,
	"FAT":        models.NutrFatG,
	"FIBTG":      models.NutrFiberG,
	"SUGAR":      models.NutrSugarG,
	"NA":         models.NutrSodiumMg,
	"FASAT":      models.NutrSatFatG,
	"FATRN":      models.NutrTransFatG,
	"CHOLE":      models.NutrCholesterolMg,
	"K":          models.NutrPotassiumMg,
	"CA":         models.NutrCalciumMg,
	"FE":         models.NutrIronMg,
	"MG":         models.NutrMagnesiumMg,
	"ZN":         models.NutrZincMg,
	"P":          models.NutrPhosphorusMg,
	"VITA_RAE":   models.NutrVitaminAUg,
	"VITB6A":     models.NutrVitaminB6Mg,
	"VITB12":     models.NutrVitaminB12Ug,
	"VITC":       models.NutrVitaminCMg,
	"VITD":       models.NutrVitaminDUg,
	"TOCPHA":     models.NutrVitaminEMg,
	"VITK1":      models.NutrVitaminKUg,
	"FOLDFE":     models.NutrFolateUg,
	"THIA":       models.NutrThiaminMg,
	"RIBF":       models.NutrRiboflavinMg,
	"NIA":        models.NutrNiacinMg,
}

func mapNutrients(raw map[string]float64) models.NutrientVector {
	v := make(models.NutrientVector, len(raw))
	for code, amount := range raw {
		if key, ok := providerNutrientKeys[code]; ok && amount >= 0 {
			v[key] = amount
		}
	}
	return v
}

func (l *httpLookup) get(endpoint string, params url.Values) (*parserResponse, error) {
	if l.appID == "" || l.appKey == "" {
		return nil, fmt.Errorf("food provider credentials not configured")
	}
	params.Set("app_id", l.appID)
	params.Set("app_key", l.appKey)

	resp, err := l.client.Get(l.baseURL + endpoint + "?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("calling food provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading provider response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider error %d: %s", resp.StatusCode, body)
	}

	var pr parserResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("parsing provider response: %w", err)
	}
	return &pr, nil
}

func (l *httpLookup) resultsFrom(pr *parserResponse, barcode string) []FoodResult {
	results := make([]FoodResult, 0, len(pr.Hints))
	for _, h := range pr.Hints {
		serving := "1 serving"
		if len(h.Measures) > 0 {
			serving = h.Measures[0].Label
		}
		results = append(results, FoodResult{
			ProviderID:         h.Food.FoodID,
			Barcode:            barcode,
			Name:               h.Food.Label,
			Brand:              h.Food.Brand,
			ServingDescription: serving,
			Nutrients:          mapNutrients(h.Food.Nutrients),
		})
	}
	return results
}

func (l *httpLookup) Search(query string) ([]FoodResult, error) {
	pr, err := l.get("/parser", url.Values{"ingr": {query}})
	if err != nil {
		return nil, err
	}
	return l.resultsFrom(pr, ""), nil
}

func (l *httpLookup) Barcode(code string) (*FoodResult, error) {
	pr, err := l.get("/parser", url.Values{"upc": {code}})
	if err != nil {
		return nil, err
	}
	results := l.resultsFrom(pr, code)
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

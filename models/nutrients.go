package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Nutrient keys. Macros first, then the micronutrients the food providers
// report. Amounts are grams unless the key says otherwise.
const (
	NutrCalories = "calories"
	NutrProteinG = "proteinG"
	NutrCarbsG   = "carbsG"
	NutrFatG     = "fatG"
	NutrFiberG   = "fiberG"
	NutrSugarG   = "sugarG"
	NutrSodiumMg = "sodiumMg"

	NutrSatFatG        = "saturatedFatG"
	NutrTransFatG      = "transFatG"
	NutrMonoFatG       = "monounsaturatedFatG"
	NutrPolyFatG       = "polyunsaturatedFatG"
	NutrCholesterolMg  = "cholesterolMg"
	NutrPotassiumMg    = "potassiumMg"
	NutrCalciumMg      = "calciumMg"
	NutrIronMg         = "ironMg"
	NutrMagnesiumMg    = "magnesiumMg"
	NutrZincMg         = "zincMg"
	NutrPhosphorusMg   = "phosphorusMg"
	NutrVitaminAUg     = "vitaminAUg"
	NutrVitaminB6Mg    = "vitaminB6Mg"
	NutrVitaminB12Ug   = "vitaminB12Ug"
	NutrVitaminCMg     = "vitaminCMg"
	NutrVitaminDUg     = "vitaminDUg"
	NutrVitaminEMg     = "vitaminEMg"
	NutrVitaminKUg     = "vitaminKUg"
	NutrFolateUg       = "folateUg"
	NutrThiaminMg      = "thiaminMg"
	NutrRiboflavinMg   = "riboflavinMg"
	NutrNiacinMg       = "niacinMg"
)

// NutrientVector maps a nutrient key to a non-negative amount. A missing key
// reads as zero. Treat values as immutable once built: every method returns a
// fresh map and never touches its receiver.
type NutrientVector map[string]float64

// Get returns the amount for key, zero when absent.
func (v NutrientVector) Get(key string) float64 {
	return v[key]
}

// Clone returns an independent copy.
func (v NutrientVector) Clone() NutrientVector {
	out := make(NutrientVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Validate rejects negative, NaN and infinite amounts. Runs at the
// item-construction boundary so everything downstream can assume clean input.
func (v NutrientVector) Validate() error {
	for k, val := range v {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("nutrient %q: amount must be finite", k)
		}
		if val < 0 {
			return fmt.Errorf("nutrient %q: amount must not be negative", k)
		}
	}
	return nil
}

// SumVectors adds the given vectors key-wise. Pure and order-independent:
// the same set of inputs always produces the same totals, which is what lets
// the client recompute a summary offline and match the server exactly.
// An empty input yields an empty (all-zero) vector.
func SumVectors(vectors []NutrientVector) NutrientVector {
	totals := make(NutrientVector)
	for _, v := range vectors {
		for k, amount := range v {
			totals[k] += amount
		}
	}
	return totals
}

// AggregateItems sums the as-logged nutrient snapshots of the items. Each
// item's vector already reflects its quantity, so no scaling happens here.
func AggregateItems(items []LogItem) NutrientVector {
	vectors := make([]NutrientVector, 0, len(items))
	for _, it := range items {
		vectors = append(vectors, it.Nutrients)
	}
	return SumVectors(vectors)
}

// Rounded returns a display copy: calories to the nearest integer, the three
// macro grams to the nearest 0.1, everything else untouched. Stored totals
// always keep full precision; rounding happens only when a human-facing
// summary is serialized.
func (v NutrientVector) Rounded() NutrientVector {
	out := v.Clone()
	if c, ok := out[NutrCalories]; ok {
		out[NutrCalories] = math.Round(c)
	}
	for _, k := range []string{NutrProteinG, NutrCarbsG, NutrFatG} {
		if g, ok := out[k]; ok {
			out[k] = math.Round(g*10) / 10
		}
	}
	return out
}

// Value / Scan let gorm persist the vector as a JSON column.

func (v NutrientVector) Value() (driver.Value, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v)
}

func (v *NutrientVector) Scan(src interface{}) error {
	if src == nil {
		*v = NutrientVector{}
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return errors.New("nutrient vector: unsupported column type")
	}
	if len(data) == 0 {
		*v = NutrientVector{}
		return nil
	}
	return json.Unmarshal(data, v)
}

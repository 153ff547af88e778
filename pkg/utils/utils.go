package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// GetSchemaFromConfig renders the JSON schema of config with every definition inlined.
func GetSchemaFromConfig(config any) (string, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true
	schema := r.Reflect(config)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}

// Round rounds v half away from zero to places decimal places.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// RoundString formats v with exactly places decimal places.
func RoundString(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

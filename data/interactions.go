// Package data holds the bundled food-drug interaction knowledge base.
package data

import _ "embed"

//go:embed food_drug_interactions.json
var InteractionsJSON []byte

package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DrugResult is one hit from the openFDA drug label search.
type DrugResult struct {
	BrandName    string `json:"brand_name"`
	GenericName  string `json:"generic_name"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

type OpenFDAService struct {
	baseURL string
	client  *http.Client
}

// NewOpenFDAService initializes the openFDA client. OPENFDA_BASE_URL can
// point at a stub in tests; the public API needs no credentials.
func NewOpenFDAService() *OpenFDAService {
	base := os.Getenv("OPENFDA_BASE_URL")
	if base == "" {
		base = "https://api.fda.gov"
	}
	return &OpenFDAService{
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type drugLabelResponse struct {
	Results []struct {
		OpenFDA struct {
			BrandName        []string `json:"brand_name"`
			GenericName      []string `json:"generic_name"`
			ManufacturerName []string `json:"manufacturer_name"`
		} `json:"openfda"`
	} `json:"results"`
}

// SearchDrugs queries the openFDA drug label endpoint by brand or generic
// name. A 404 from openFDA means "no matches", not a failure.
func (s *OpenFDAService) SearchDrugs(query string) ([]DrugResult, error) {
	search := fmt.Sprintf(`openfda.brand_name:"%s" openfda.generic_name:"%s"`, query, query)
	u := fmt.Sprintf("%s/drug/label.json?search=%s&limit=10", s.baseURL, url.QueryEscape(search))

	resp, err := s.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to call openFDA: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []DrugResult{}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read openFDA response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openFDA API error %d: %s", resp.StatusCode, string(body))
	}

	var lr drugLabelResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, fmt.Errorf("failed to parse openFDA JSON: %w", err)
	}

	results := make([]DrugResult, 0, len(lr.Results))
	seen := make(map[string]struct{})
	for _, r := range lr.Results {
		d := DrugResult{
			BrandName:   first(r.OpenFDA.BrandName, "Unknown"),
			GenericName: first(r.OpenFDA.GenericName, "Unknown"),
		}
		if len(r.OpenFDA.ManufacturerName) > 0 {
			d.Manufacturer = r.OpenFDA.ManufacturerName[0]
		}
		// openFDA returns one record per label; collapse repeats of the
		// same brand/generic pair.
		key := d.BrandName + "|" + d.GenericName
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, d)
	}
	return results, nil
}

func first(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}

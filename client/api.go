package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Client is the typed HTTP client for the Medible API. It owns nothing but
// the transport: request decoration (bearer token, request id), the
// {data}/{error} response envelope, and the snake_case-to-local mapping.
type Client struct {
	baseURL string
	http    *http.Client
	tokenFn func() string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetTokenSource installs the bearer-token provider; the session manager
// wires itself in here so every authenticated call carries its token.
func (c *Client) SetTokenSource(fn func() string) {
	c.tokenFn = fn
}

// APIError is a structured failure from the server. Error() is the
// human-readable message the stores surface to callers.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

// IsUnauthorized reports whether err is a 401-class API failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		// A body that is not the envelope (proxy error page) is reported
		// below via the status code.
		_ = json.Unmarshal(raw, &env)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// --- wire shapes (snake_case) and their one-place mapping to local types ---

type wireUser struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserProfile(w wireUser) UserProfile {
	return UserProfile{
		ID:        w.ID,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Name:      w.Name,
		CreatedAt: w.CreatedAt,
	}
}

type wireMedication struct {
	ID          uint      `json:"id"`
	DrugName    string    `json:"drug_name"`
	GenericName string    `json:"generic_name"`
	Dosage      string    `json:"dosage"`
	Frequency   string    `json:"frequency"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMedication(w wireMedication) Medication {
	return Medication{
		ID:          w.ID,
		DrugName:    w.DrugName,
		GenericName: w.GenericName,
		Dosage:      w.Dosage,
		Frequency:   w.Frequency,
		CreatedAt:   w.CreatedAt,
	}
}

type wireDrugResult struct {
	BrandName    string `json:"brand_name"`
	GenericName  string `json:"generic_name"`
	Manufacturer string `json:"manufacturer"`
}

func toDrugSearchResult(w wireDrugResult) DrugSearchResult {
	r := DrugSearchResult{
		BrandName:    w.BrandName,
		GenericName:  w.GenericName,
		Manufacturer: w.Manufacturer,
	}
	if r.BrandName == "" {
		r.BrandName = "Unknown"
	}
	if r.GenericName == "" {
		r.GenericName = "Unknown"
	}
	return r
}

type wireInteraction struct {
	ID             string `json:"id"`
	DrugName       string `json:"drug_name"`
	FoodName       string `json:"food_name"`
	FoodCategory   string `json:"food_category"`
	Severity       string `json:"severity"`
	Effect         string `json:"effect"`
	Mechanism      string `json:"mechanism"`
	Recommendation string `json:"recommendation"`
	EvidenceLevel  string `json:"evidence_level"`
}

func toInteraction(w wireInteraction) Interaction {
	return Interaction{
		ID:             w.ID,
		DrugName:       w.DrugName,
		FoodName:       w.FoodName,
		FoodCategory:   w.FoodCategory,
		Severity:       Severity(w.Severity),
		Effect:         w.Effect,
		Mechanism:      w.Mechanism,
		Recommendation: w.Recommendation,
		EvidenceLevel:  w.EvidenceLevel,
	}
}

type wireHistoryEntry struct {
	ID                 uint      `json:"id"`
	FoodName           string    `json:"food_name"`
	HadInteraction     bool      `json:"had_interaction"`
	InteractionCount   int       `json:"interaction_count"`
	MaxSeverity        *string   `json:"max_severity"`
	MedicationsChecked []string  `json:"medications_checked"`
	CreatedAt          time.Time `json:"created_at"`
}

func toHistoryEntry(w wireHistoryEntry) HistoryEntry {
	e := HistoryEntry{
		ID:                 w.ID,
		FoodName:           w.FoodName,
		HadInteraction:     w.HadInteraction,
		InteractionCount:   w.InteractionCount,
		MedicationsChecked: w.MedicationsChecked,
		CreatedAt:          w.CreatedAt,
	}
	if w.MaxSeverity != nil {
		e.MaxSeverity = *w.MaxSeverity
	}
	return e
}

// --- typed endpoint calls ---

type authPayload struct {
	User   wireUser `json:"user"`
	Tokens struct {
		AccessToken string `json:"access_token"`
	} `json:"tokens"`
}

func (c *Client) login(ctx context.Context, email, password string) (*authPayload, error) {
	body := map[string]string{"email": email, "password": password}
	var out authPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) register(ctx context.Context, email, password, name, firstName, lastName string) (*authPayload, error) {
	body := map[string]string{
		"email":      email,
		"password":   password,
		"name":       name,
		"first_name": firstName,
		"last_name":  lastName,
	}
	var out authPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) profile(ctx context.Context) (*wireUser, error) {
	var out struct {
		User wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) medications(ctx context.Context) ([]wireMedication, error) {
	var out struct {
		Medications []wireMedication `json:"medications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/medications", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Medications, nil
}

func (c *Client) addMedication(ctx context.Context, drugName, dosage, frequency string) (*wireMedication, error) {
	body := map[string]string{"drug_name": drugName}
	if dosage != "" {
		body["dosage"] = dosage
	}
	if frequency != "" {
		body["frequency"] = frequency
	}
	var out struct {
		Medication wireMedication `json:"medication"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/medications", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Medication, nil
}

func (c *Client) removeMedication(ctx context.Context, id uint) error {
	path := "/api/v1/medications/" + strconv.FormatUint(uint64(id), 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) searchDrugs(ctx context.Context, query string) ([]wireDrugResult, error) {
	q := url.Values{"q": {query}}
	var out struct {
		Drugs []wireDrugResult `json:"drugs"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/drugs/search", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Drugs, nil
}

func (c *Client) drugInteractions(ctx context.Context, drugName string) ([]wireInteraction, error) {
	path := "/api/v1/interactions/drug/" + url.PathEscape(drugName)
	var out struct {
		Interactions []wireInteraction `json:"interactions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Interactions, nil
}

type wireCheckResult struct {
	FoodChecked        string                       `json:"food_checked"`
	MedicationsChecked []string                     `json:"medications_checked"`
	TotalWarnings      int                          `json:"total_warnings"`
	HasHighSeverity    bool                         `json:"has_high_severity"`
	MaxSeverity        string                       `json:"max_severity"`
	Warnings           map[string][]wireInteraction `json:"warnings"`
}

func toCheckResult(w wireCheckResult) *CheckResult {
	r := &CheckResult{
		FoodChecked:        w.FoodChecked,
		MedicationsChecked: w.MedicationsChecked,
		TotalWarnings:      w.TotalWarnings,
		HasHighSeverity:    w.HasHighSeverity,
		MaxSeverity:        w.MaxSeverity,
		Warnings:           make(map[Severity][]Interaction, len(w.Warnings)),
	}
	for sev, recs := range w.Warnings {
		group := make([]Interaction, 0, len(recs))
		for _, rec := range recs {
			group = append(group, toInteraction(rec))
		}
		r.Warnings[Severity(sev)] = group
	}
	return r
}

// CheckFood runs a server-side check of one food against a medication
// list and returns the grouped verdict.
func (c *Client) CheckFood(ctx context.Context, food string, medications []string) (*CheckResult, error) {
	body := map[string]any{"food": food, "medications": medications}
	var out wireCheckResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/interactions/check-multiple", nil, body, &out); err != nil {
		return nil, err
	}
	return toCheckResult(out), nil
}

func (c *Client) history(ctx context.Context, limit int) ([]wireHistoryEntry, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var out struct {
		History []wireHistoryEntry `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/history", q, nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

func (c *Client) saveCheck(ctx context.Context, food string, medications []string, interactions []Interaction) error {
	wire := make([]map[string]any, 0, len(interactions))
	for _, i := range interactions {
		wire = append(wire, map[string]any{
			"drug_name": i.DrugName,
			"food_name": i.FoodName,
			"severity":  string(i.Severity),
			"effect":    i.Effect,
		})
	}
	body := map[string]any{
		"food_name":    food,
		"medications":  medications,
		"interactions": wire,
	}
	return c.do(ctx, http.MethodPost, "/api/v1/history", nil, body, nil)
}

func (c *Client) deleteHistoryEntry(ctx context.Context, id uint) error {
	path := "/api/v1/history/" + strconv.FormatUint(uint64(id), 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) clearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/history", nil, nil, nil)
}

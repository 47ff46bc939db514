// Package eprel looks up registered products on the European Product
// Registry for Energy Labelling.
package eprel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eie-registry/internal/model"
)

var (
	ErrNotFound    = errors.New("eprel: product not found")
	ErrUnavailable = errors.New("eprel: service unavailable")
)

// Product is the subset of an EPREL registration the registry stores.
type Product struct {
	RegistrationNumber string `json:"eprelRegistrationNumber"`
	ProductGroup       string `json:"productGroup"`
	Brand              string `json:"supplierOrTrademark"`
	Model              string `json:"modelIdentifier"`
	EnergyClass        string `json:"energyClass"`
	Status             string `json:"status"`
}

// Category maps the EPREL product group onto a registry category.
func (p Product) Category() (model.Category, bool) {
	return CategoryOf(p.ProductGroup)
}

// Published reports whether the registration is visible to the public.
func (p Product) Published() bool {
	return p.Status == "" || strings.EqualFold(p.Status, "PUBLISHED")
}

// Lookup resolves an EPREL registration number.
type Lookup interface {
	Product(ctx context.Context, code string) (*Product, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Product(ctx context.Context, code string) (*Product, error) {
	endpoint := c.baseURL + "/product/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build eprel request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("eprel: unexpected status %d", resp.StatusCode)
	}

	var p Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode eprel product: %w", err)
	}
	if p.RegistrationNumber == "" {
		p.RegistrationNumber = code
	}
	return &p, nil
}

var productGroups = []struct {
	prefix   string
	category model.Category
}{
	{"washerdrier", model.CategoryWasherDriers},
	{"washingmachine", model.CategoryWashingMachines},
	{"dishwasher", model.CategoryDishwashers},
	{"tumbledrier", model.CategoryTumbleDryers},
	{"tumbledryer", model.CategoryTumbleDryers},
	{"refrigeratingappl", model.CategoryRefrigeratingAppl},
	{"rangehood", model.CategoryRangeHoods},
	{"oven", model.CategoryOvens},
}

// CategoryOf normalises names such as "washingmachines2019" or
// "refrigeratingappliances2019".
func CategoryOf(group string) (model.Category, bool) {
	g := strings.ToLower(strings.TrimSpace(group))
	for _, pg := range productGroups {
		if strings.HasPrefix(g, pg.prefix) {
			return pg.category, true
		}
	}
	return "", false
}

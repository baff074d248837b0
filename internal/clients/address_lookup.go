package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrPostalCodeNotFound is returned when the lookup service does not
// know the postal code
var ErrPostalCodeNotFound = errors.New("postal code not found")

// AddressLookup is the HTTP client for the ViaCEP-style postal code
// lookup service, used for validation before checkout submission
type AddressLookup struct {
	baseURL    string
	httpClient *http.Client
}

// NewAddressLookup creates a new address lookup client
func NewAddressLookup(baseURL string) *AddressLookup {
	return &AddressLookup{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Address holds the fields the lookup service resolves for a postal code
type Address struct {
	PostalCode   string `json:"cep"`
	Street       string `json:"logradouro"`
	Neighborhood string `json:"bairro"`
	City         string `json:"localidade"`
	State        string `json:"uf"`
	NotFound     bool   `json:"erro"`
}

// Lookup resolves a postal code. It returns ErrPostalCodeNotFound when
// the service flags the code as unknown.
func (c *AddressLookup) Lookup(ctx context.Context, postalCode string) (*Address, error) {
	cep := digitsOnly(postalCode)
	if len(cep) != 8 {
		return nil, ErrPostalCodeNotFound
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var addr Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	if addr.NotFound {
		return nil, ErrPostalCodeNotFound
	}
	return &addr, nil
}

// digitsOnly strips everything but digits from a masked postal code
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

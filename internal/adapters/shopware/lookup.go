package shopware

import (
	"context"
	"errors"
	"fmt"
)

type searchFilter struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

type searchRequest struct {
	Limit  int            `json:"limit"`
	Filter []searchFilter `json:"filter,omitempty"`
}

type searchEntity struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	TaxRate float64 `json:"taxRate"`
}

type searchResponse struct {
	Total int            `json:"total"`
	Data  []searchEntity `json:"data"`
}

func (s *Store) searchFirst(ctx context.Context, entity string, filters ...searchFilter) (searchEntity, error) {
	var resp searchResponse
	err := s.postJSON(ctx, "/api/search/"+entity, searchRequest{Limit: 1, Filter: filters}, &resp)
	if err != nil {
		return searchEntity{}, err
	}
	if len(resp.Data) == 0 {
		return searchEntity{}, fmt.Errorf("%s: %w", entity, errNoMatch)
	}
	return resp.Data[0], nil
}

func equals(field string, value any) searchFilter {
	return searchFilter{Type: "equals", Field: field, Value: value}
}

// resolve fetches the currency, tax and sales channel once per Store.
func (s *Store) resolve(ctx context.Context) (*lookups, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookups != nil {
		return s.lookups, nil
	}

	currency, err := s.searchFirst(ctx, "currency", equals("isoCode", s.currency))
	if err != nil {
		return nil, fmt.Errorf("currency %s: %w", s.currency, err)
	}

	var tax searchEntity
	if s.taxName != "" {
		tax, err = s.searchFirst(ctx, "tax", equals("name", s.taxName))
	}
	if s.taxName == "" || errors.Is(err, errNoMatch) {
		tax, err = s.searchFirst(ctx, "tax")
	}
	if err != nil {
		return nil, fmt.Errorf("tax: %w", err)
	}

	channel, err := s.searchFirst(ctx, "sales-channel", equals("typeId", storefrontChannelType))
	if err != nil {
		return nil, fmt.Errorf("sales channel: %w", err)
	}

	s.lookups = &lookups{
		currencyID:     currency.ID,
		taxID:          tax.ID,
		taxRate:        tax.TaxRate,
		salesChannelID: channel.ID,
	}
	return s.lookups, nil
}

// FindCategory returns the id of an existing category with this exact name.
func (s *Store) FindCategory(ctx context.Context, name string) (string, bool, error) {
	c, err := s.searchFirst(ctx, "category", equals("name", name))
	if errors.Is(err, errNoMatch) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return c.ID, true, nil
}

package catalog

import (
	"context"
	"strings"

	"github.com/thedivyam/noon-sde3/internal/pricing"
	pkgerrors "github.com/thedivyam/noon-sde3/pkg/errors"
	"github.com/thedivyam/noon-sde3/pkg/logger"
	"github.com/thedivyam/noon-sde3/pkg/pagination"
	"github.com/thedivyam/noon-sde3/pkg/swapi"
)

// Fetcher retrieves every starship matching search.
type Fetcher interface {
	FetchStarships(ctx context.Context, search string) ([]swapi.Starship, error)
}

// Service exposes the catalog with errors mapped into the API taxonomy.
type Service interface {
	Fetch(ctx context.Context, search string) ([]swapi.Starship, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	fetcher Fetcher
	logg    *logger.Logger
}

// ListParams configures a paged catalog listing.
type ListParams struct {
	Search string
	Limit  int
	Cursor string
}

// Item is a starship with its unit price in the display currency.
type Item struct {
	swapi.Starship
	Price          string `json:"price"`
	PriceEstimated bool   `json:"price_estimated"`
}

// ListResult wraps one page of starships and the cursor for the next page.
type ListResult struct {
	Items  []Item `json:"items"`
	Count  int    `json:"count"`
	Cursor string `json:"cursor"`
}

// NewService wires the catalog dependencies.
func NewService(fetcher Fetcher, logg *logger.Logger) (Service, error) {
	if fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog fetcher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{fetcher: fetcher, logg: logg}, nil
}

func (s *service) Fetch(ctx context.Context, search string) ([]swapi.Starship, error) {
	search = strings.TrimSpace(search)
	ships, err := s.fetcher.FetchStarships(ctx, search)
	if err != nil {
		return nil, s.report(s.logg.WithSearchTerm(ctx, search), err)
	}
	return ships, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	search := strings.TrimSpace(params.Search)
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	ships, err := s.Fetch(ctx, search)
	if err != nil {
		return nil, err
	}

	page, next, err := pagination.Slice(ships, search, pagination.Params{Limit: params.Limit, Cursor: params.Cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	items := make([]Item, 0, len(page))
	for _, ship := range page {
		items = append(items, NewItem(ship))
	}
	return &ListResult{Items: items, Count: len(ships), Cursor: next}, nil
}

// NewItem prices a starship for display.
func NewItem(ship swapi.Starship) Item {
	return Item{
		Starship:       ship,
		Price:          pricing.FormatAmount(pricing.UnitPrice(ship)),
		PriceEstimated: pricing.IsEstimated(ship),
	}
}

func (s *service) report(ctx context.Context, err error) error {
	mapped := MapError(err)
	if mapped.Code() == pkgerrors.CodeCancelled {
		s.logg.Info(ctx, "catalog request cancelled")
	} else {
		s.logg.Error(ctx, "catalog request failed", err)
	}
	return mapped
}

// MapError translates client errors: cancellations become REQUEST_CANCELLED and
// remote failures DEPENDENCY_ERROR carrying the upstream status.
func MapError(err error) *pkgerrors.Error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if swapi.IsCancelled(err) {
		return pkgerrors.Wrap(pkgerrors.CodeCancelled, err, "catalog request cancelled")
	}
	if remote, ok := swapi.AsRemoteError(err); ok {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, remote.Message).
			WithDetails(map[string]any{"status": remote.StatusCode})
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "catalog request failed")
}

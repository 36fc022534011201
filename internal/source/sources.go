package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kansaiyets/Satellite-tracker/internal/catalog"
	"github.com/kansaiyets/Satellite-tracker/internal/tle"
)

// CatalogSource loads the UCS registry through a Fetcher.
type CatalogSource struct {
	fetcher Fetcher
	name    string
	logger  *slog.Logger
}

// NewCatalogSource creates a CatalogSource. name identifies the document in
// the resulting Dataset, typically its URL or path.
func NewCatalogSource(fetcher Fetcher, name string, logger *slog.Logger) *CatalogSource {
	return &CatalogSource{fetcher: fetcher, name: name, logger: logger}
}

// FetchCatalog fetches and parses the registry.
func (s *CatalogSource) FetchCatalog(ctx context.Context) (*catalog.Dataset, error) {
	data, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	ds, err := catalog.Parse(bytes.NewReader(data), s.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	ds.Source = s.name
	ds.FetchedAt = time.Now().UTC()
	s.logger.Info("catalog loaded", "source", s.name, "count", len(ds.Entries), "skipped", ds.Skipped)
	return ds, nil
}

// OrbitalSource loads the element feed through a Fetcher.
type OrbitalSource struct {
	fetcher Fetcher
	name    string
	logger  *slog.Logger
}

// NewOrbitalSource creates an OrbitalSource.
func NewOrbitalSource(fetcher Fetcher, name string, logger *slog.Logger) *OrbitalSource {
	return &OrbitalSource{fetcher: fetcher, name: name, logger: logger}
}

// FetchOrbitalElements fetches and parses the element feed in either form.
func (s *OrbitalSource) FetchOrbitalElements(ctx context.Context) (*tle.Dataset, error) {
	data, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching orbital elements: %w", err)
	}
	ds, err := tle.Parse(bytes.NewReader(data), s.logger)
	if err != nil {
		return nil, fmt.Errorf("parsing orbital elements: %w", err)
	}
	ds.Source = s.name
	ds.FetchedAt = time.Now().UTC()
	s.logger.Info("orbital elements loaded", "source", s.name, "format", ds.Format, "count", len(ds.Entries), "skipped", ds.Skipped)
	return ds, nil
}

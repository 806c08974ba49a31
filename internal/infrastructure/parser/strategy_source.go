package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"FeaturedSelector/internal/config"
	"FeaturedSelector/internal/domain"
	"FeaturedSelector/internal/ports"
	"FeaturedSelector/internal/scanner"
)

// StrategySource implements ItemSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ItemSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Fetch runs every configured site. A failing site is logged and skipped; the
// call fails only when every site failed.
func (s *StrategySource) Fetch(ctx context.Context, now time.Time) ([]domain.Item, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch", "sites", len(s.sites), "at", now.Format(time.RFC3339))

	var (
		aggregated []domain.Item
		failures   []error
	)
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "categories", len(site.Categories))
		req := siteRequest(site, now)
		if err := s.registry.Check(site.Scanner, req); err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("site failed", "site", site.Name, "error", err)
			failures = append(failures, fmt.Errorf("scan site %s: %w", site.Name, err))
			continue
		}

		for i := range results {
			if results[i].Origin == "" {
				results[i].Origin = site.Name
			}
		}
		s.debug("site produced items", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(s.sites) > 0 && len(failures) == len(s.sites) {
		return nil, errors.Join(failures...)
	}

	s.debug("strategy source done", "total_items", len(aggregated))
	return aggregated, nil
}

// Check validates every configured site against its strategy without fetching.
func (s *StrategySource) Check() error {
	if s.registry == nil {
		return fmt.Errorf("scanner registry is not configured")
	}
	var errs []error
	for _, site := range s.sites {
		if err := s.registry.Check(site.Scanner, siteRequest(site, time.Time{})); err != nil {
			errs = append(errs, fmt.Errorf("site %s: %w", site.Name, err))
		}
	}
	return errors.Join(errs...)
}

func siteRequest(site config.SiteConfig, now time.Time) scanner.Request {
	return scanner.Request{
		Now:        now,
		SiteName:   site.Name,
		Options:    site.Options,
		Categories: toScannerCategories(site.Categories),
	}
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

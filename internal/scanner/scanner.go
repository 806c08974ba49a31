package scanner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"FeaturedSelector/internal/domain"
)

// Category describes a concrete feed endpoint provided by config, e.g. one subreddit.
type Category struct {
	Name string
	URL  string
}

// Request carries all parameters required to execute a scan.
type Request struct {
	Now        time.Time
	SiteName   string
	Categories []Category
	Options    map[string]string
}

// Scanner captures a single strategy implementation (reddit feeds, JSON files).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Item, error)
}

// OptionValidator is implemented by strategies that accept per-site options.
// Strategies without it take no options.
type OptionValidator interface {
	ValidateOptions(options map[string]string) error
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation.
func (r *Registry) Register(scanner Scanner) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("scanner %s is not registered (known: %v)", name, r.Names())
}

// Check verifies that the named strategy can serve req: it must be registered,
// every category needs a name or URL, and options must satisfy the strategy.
func (r *Registry) Check(name string, req Request) error {
	strategy, err := r.Resolve(name)
	if err != nil {
		return err
	}
	if len(req.Categories) == 0 {
		return fmt.Errorf("scanner %s: site %s has no categories", name, req.SiteName)
	}
	for i, cat := range req.Categories {
		if strings.TrimSpace(cat.Name) == "" && strings.TrimSpace(cat.URL) == "" {
			return fmt.Errorf("scanner %s: site %s category #%d has neither name nor url", name, req.SiteName, i)
		}
	}

	validator, ok := strategy.(OptionValidator)
	if !ok {
		if len(req.Options) > 0 {
			return fmt.Errorf("scanner %s takes no options (site %s sets %v)", name, req.SiteName, optionKeys(req.Options))
		}
		return nil
	}
	if err := validator.ValidateOptions(req.Options); err != nil {
		return fmt.Errorf("scanner %s: site %s: %w", name, req.SiteName, err)
	}
	return nil
}

func optionKeys(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Names lists registered strategies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

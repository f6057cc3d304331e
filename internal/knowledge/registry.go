package knowledge

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// CollectionName is the envelope document id under which the full domain
// list is persisted.
const CollectionName = "knowledge_domains"

// CollectionStore is the slice of the persistence gateway the registry uses.
type CollectionStore interface {
	LoadCollection(ctx context.Context, name string) []json.RawMessage
	StoreCollection(ctx context.Context, name string, records interface{}) error
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// DeriveID derives a stable domain id from a display name: lowercase, with
// any run of characters outside [a-z0-9_] collapsed to a single underscore.
func DeriveID(name string) string {
	return idSanitizer.ReplaceAllString(strings.ToLower(name), "_")
}

// Registry manages the collection of knowledge domains. Creation persists the
// full domain list; persistence failures are logged and swallowed so the
// in-memory registry stays live when the store is unreachable.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]*Domain
	order   []string // registration order, for stable iteration
	store   CollectionStore
	log     *logrus.Logger
}

// NewRegistry creates a registry pre-populated with the predefined domains
// and re-hydrated with any domains previously persisted to the store.
func NewRegistry(ctx context.Context, store CollectionStore, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}

	r := &Registry{
		domains: make(map[string]*Domain),
		store:   store,
		log:     log,
	}

	for _, domain := range PredefinedDomains() {
		r.register(domain)
	}
	r.hydrate(ctx)

	return r
}

// hydrate merges previously persisted domains into the registry. Stored
// definitions win over predefined ones with the same id.
func (r *Registry) hydrate(ctx context.Context) {
	if r.store == nil {
		return
	}

	records := r.store.LoadCollection(ctx, CollectionName)
	loaded := 0
	for _, record := range records {
		var domain Domain
		if err := json.Unmarshal(record, &domain); err != nil {
			r.log.WithError(err).Warn("Skipping malformed knowledge domain record")
			continue
		}
		if domain.ID == "" {
			domain.ID = DeriveID(domain.Name)
		}
		if domain.ID == "" {
			continue
		}

		r.mu.Lock()
		if _, exists := r.domains[domain.ID]; !exists {
			r.order = append(r.order, domain.ID)
		}
		r.domains[domain.ID] = &domain
		r.mu.Unlock()
		loaded++
	}

	if loaded > 0 {
		r.log.WithField("count", loaded).Info("Knowledge domains hydrated from store")
	}
}

// Create registers a domain, deriving its id from the name, and persists the
// full domain list. An existing domain with the same derived id is replaced.
func (r *Registry) Create(ctx context.Context, domain *Domain) *Domain {
	r.mu.Lock()
	r.register(domain)
	r.mu.Unlock()

	r.persist(ctx)
	return domain
}

// register requires the write lock to be held (or single-threaded boot).
func (r *Registry) register(domain *Domain) {
	domain.ID = DeriveID(domain.Name)

	if _, exists := r.domains[domain.ID]; !exists {
		r.order = append(r.order, domain.ID)
	}
	r.domains[domain.ID] = domain

	r.log.WithField("domain", domain.ID).Debug("Knowledge domain registered")
}

// persist writes the full domain list through the gateway. Failures are
// logged and swallowed; the next successful write repairs the store.
func (r *Registry) persist(ctx context.Context) {
	if r.store == nil {
		return
	}

	snapshot := r.List()
	if err := r.store.StoreCollection(ctx, CollectionName, snapshot); err != nil {
		r.log.WithError(err).Warn("Failed to persist knowledge domains; registry remains in-memory only")
	}
}

// Get retrieves a domain by id.
func (r *Registry) Get(id string) (*Domain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	domain, ok := r.domains[id]
	return domain, ok
}

// List returns all domains in registration order.
func (r *Registry) List() []*Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Domain, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.domains[id])
	}
	return result
}

// Count returns the number of registered domains.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.domains)
}

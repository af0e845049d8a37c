// Package catalog serves the read-only kit and add-on reference data.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/kit-rental/internal/model"
)

var (
	// ErrKitNotFound is returned by GetKit for an unknown kit ID.
	ErrKitNotFound = errors.New("kit not found")
	// ErrUnknownActivity is returned by ParseActivity.
	ErrUnknownActivity = errors.New("unknown activity type")
)

// Catalog is an immutable, in-process catalog.  Safe for concurrent use.
type Catalog struct {
	kits      []model.Kit
	kitByID   map[string]model.Kit
	addOns    []model.AddOn
	addOnByID map[string]model.AddOn
}

// New builds a catalog, parsing each kit's price label into PricePerNight.
// Duplicate IDs and unparseable prices are errors.
func New(kits []model.Kit, addOns []model.AddOn) (*Catalog, error) {
	c := &Catalog{
		kitByID:   make(map[string]model.Kit, len(kits)),
		addOnByID: make(map[string]model.AddOn, len(addOns)),
	}
	for _, k := range kits {
		if _, dup := c.kitByID[k.ID]; dup {
			return nil, fmt.Errorf("duplicate kit id %q", k.ID)
		}
		p, err := model.ParsePrice(k.Price)
		if err != nil {
			return nil, fmt.Errorf("kit %s: %w", k.ID, err)
		}
		k.PricePerNight = p
		c.kits = append(c.kits, k)
		c.kitByID[k.ID] = k
	}
	for _, a := range addOns {
		if _, dup := c.addOnByID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate add-on id %q", a.ID)
		}
		if a.PriceType != model.PerNight && a.PriceType != model.PerItem {
			return nil, fmt.Errorf("add-on %s: unknown price type %q", a.ID, a.PriceType)
		}
		c.addOns = append(c.addOns, a)
		c.addOnByID[a.ID] = a
	}
	return c, nil
}

// Default returns the storefront catalog.
func Default() *Catalog {
	c, err := New(defaultKits, defaultAddOns)
	if err != nil {
		panic(err)
	}
	return c
}

// ListKits returns every kit, or only those tagged with activity when it
// is non-empty, in catalog order.
func (c *Catalog) ListKits(_ context.Context, activity model.ActivityType) ([]model.Kit, error) {
	out := make([]model.Kit, 0, len(c.kits))
	for _, k := range c.kits {
		if activity == "" || k.HasActivity(activity) {
			out = append(out, k)
		}
	}
	return out, nil
}

// GetKit returns the kit with the given ID.
func (c *Catalog) GetKit(_ context.Context, id string) (model.Kit, error) {
	k, ok := c.kitByID[id]
	if !ok {
		return model.Kit{}, ErrKitNotFound
	}
	return k, nil
}

// ListAddOns returns every add-on in catalog order.
func (c *Catalog) ListAddOns(_ context.Context) ([]model.AddOn, error) {
	return append([]model.AddOn(nil), c.addOns...), nil
}

// AddOn resolves a single add-on.  It satisfies pricing.AddOnLookup.
func (c *Catalog) AddOn(id string) (model.AddOn, bool) {
	a, ok := c.addOnByID[id]
	return a, ok
}

// ParseActivity matches an activity name case-insensitively.  An empty
// string parses to the empty activity, meaning "all".
func ParseActivity(s string) (model.ActivityType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, a := range []model.ActivityType{
		model.ActivityCamping, model.ActivityTrekking, model.ActivityBeach,
		model.ActivityWinter, model.ActivityEvent, model.ActivityLakeside,
	} {
		if strings.EqualFold(s, string(a)) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
}

// Package shops keeps the list of shops visited on a trip.
package shops

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/tripbook/internal/shared"
)

// Shop is a customer stop.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Area      string    `json:"area"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input carries the editable shop fields.
type Input struct {
	ID      string `json:"id"`
	Name    string `json:"name" validate:"required"`
	Area    string `json:"area" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// Config groups optional settings.
type Config struct {
	Strict bool
	Clock  func() time.Time
	NewID  func() string
}

// Directory owns the shop list.
type Directory struct {
	shops     []Shop
	strict    bool
	now       func() time.Time
	newID     func() string
	validator *validator.Validate
}

// NewDirectory builds an empty Directory.
func NewDirectory(cfg Config) *Directory {
	d := &Directory{strict: cfg.Strict, now: cfg.Clock, newID: cfg.NewID, validator: shared.NewValidator()}
	if d.now == nil {
		d.now = time.Now
	}
	if d.newID == nil {
		d.newID = uuid.NewString
	}
	return d
}

// Load replaces the shop list.
func (d *Directory) Load(shops []Shop) {
	d.shops = append([]Shop(nil), shops...)
}

// Add records a new shop.
func (d *Directory) Add(input Input) (Shop, error) {
	input = trim(input)
	if err := shared.ValidateStruct(d.validator, input); err != nil {
		return Shop{}, err
	}
	if input.ID != "" && d.find(input.ID) >= 0 {
		return Shop{}, shared.DuplicateIDError(input.ID)
	}
	now := d.now()
	s := Shop{ID: input.ID, Name: input.Name, Area: input.Area, Address: input.Address, Phone: input.Phone, CreatedAt: now, UpdatedAt: now}
	if s.ID == "" {
		s.ID = d.newID()
	}
	d.shops = append(d.shops, s)
	return s, nil
}

// Update replaces the editable fields of a shop. An unknown id changes nothing.
func (d *Directory) Update(id string, input Input) (Shop, bool, error) {
	input = trim(input)
	if err := shared.ValidateStruct(d.validator, input); err != nil {
		return Shop{}, false, err
	}
	idx := d.find(id)
	if idx < 0 {
		return Shop{}, false, d.missing(id)
	}
	s := d.shops[idx]
	s.Name, s.Area, s.Address, s.Phone = input.Name, input.Area, input.Address, input.Phone
	s.UpdatedAt = d.now()
	d.shops[idx] = s
	return s, true, nil
}

// Delete removes a shop.
func (d *Directory) Delete(id string) (bool, error) {
	idx := d.find(id)
	if idx < 0 {
		return false, d.missing(id)
	}
	d.shops = append(d.shops[:idx], d.shops[idx+1:]...)
	return true, nil
}

// Reset clears every shop.
func (d *Directory) Reset() {
	d.shops = nil
}

// Get returns a shop by id.
func (d *Directory) Get(id string) (Shop, bool) {
	idx := d.find(id)
	if idx < 0 {
		return Shop{}, false
	}
	return d.shops[idx], true
}

// List returns shops in insertion order.
func (d *Directory) List() []Shop {
	return append([]Shop(nil), d.shops...)
}

// Areas returns the distinct shop areas, sorted.
func (d *Directory) Areas() []string {
	set := make(map[string]struct{})
	for _, s := range d.shops {
		if s.Area != "" {
			set[s.Area] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (d *Directory) find(id string) int {
	for i := range d.shops {
		if d.shops[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Directory) missing(id string) error {
	if !d.strict {
		return nil
	}
	return fmt.Errorf("shops: shop %q: %w", id, shared.ErrReference)
}

func trim(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Area = strings.TrimSpace(in.Area)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

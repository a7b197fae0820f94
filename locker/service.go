package locker

import (
	"context"

	"parcelflow/fault"
	"parcelflow/pricing"
)

// Service exposes business-level locker operations.
type Service struct {
	repo Repository
}

// NewService builds a Service using the provided repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns lockers matching the search. Status defaults to active; when
// coordinates and a radius are supplied, lockers outside the radius are
// filtered out.
func (s *Service) List(ctx context.Context, params SearchParams) ([]Locker, error) {
	status := params.Status
	if status == "" {
		status = StatusActive
	}

	lockers, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}

	if params.Lat == nil || params.Lng == nil || params.RadiusKm == nil {
		return lockers, nil
	}

	within := make([]Locker, 0, len(lockers))
	for _, l := range lockers {
		if pricing.Distance(*params.Lat, *params.Lng, l.Lat, l.Lng) <= *params.RadiusKm {
			within = append(within, l)
		}
	}
	return within, nil
}

// Get returns the locker for the given identifier.
func (s *Service) Get(ctx context.Context, id string) (Locker, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new locker. Codes are unique.
func (s *Service) Create(ctx context.Context, params CreateParams) (Locker, error) {
	if params.Name == "" || params.Code == "" || params.Address == "" {
		return Locker{}, fault.New(fault.Validation, "name, code, address, and coordinates required")
	}
	return s.repo.Create(ctx, params)
}

// Update applies a partial update to a locker.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (Locker, error) {
	return s.repo.Update(ctx, id, params)
}

// Delete removes a locker.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Seed replaces all lockers with the sample set. Development helper.
func (s *Service) Seed(ctx context.Context) ([]Locker, error) {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return nil, err
	}
	seeded := make([]Locker, 0, len(sampleLockers))
	for _, params := range sampleLockers {
		l, err := s.repo.Create(ctx, params)
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, l)
	}
	return seeded, nil
}

// Athens demo locations carried over from the pilot deployment.
var sampleLockers = []CreateParams{
	{Name: "Syntagma Square Locker", Code: "SYN-001", Address: "Syntagma Square, Athens 105 63, Greece", Lat: 37.9755, Lng: 23.7348, Capacity: 30, Features: []string{"24/7", "secure", "indoor", "climate-controlled"}},
	{Name: "Monastiraki Hub", Code: "MON-042", Address: "Monastiraki Square, Athens 105 55, Greece", Lat: 37.9769, Lng: 23.7258, Capacity: 25, Features: []string{"24/7", "secure", "indoor"}},
	{Name: "Acropolis Metro Locker", Code: "ACR-123", Address: "Acropolis Metro Station, Athens 117 42, Greece", Lat: 37.9688, Lng: 23.7279, Capacity: 20, Features: []string{"secure", "indoor", "climate-controlled"}},
	{Name: "Piraeus Port Locker", Code: "PIR-789", Address: "Piraeus Port, Piraeus 185 38, Greece", Lat: 37.9407, Lng: 23.6470, Capacity: 40, Features: []string{"24/7", "secure", "indoor"}},
	{Name: "Kolonaki Center", Code: "KOL-456", Address: "Kolonaki Square, Athens 106 73, Greece", Lat: 37.9790, Lng: 23.7420, Capacity: 15, Features: []string{"secure", "indoor"}},
	{Name: "Omonia Station Locker", Code: "OMO-234", Address: "Omonia Square, Athens 104 31, Greece", Lat: 37.9842, Lng: 23.7277, Capacity: 25, Features: []string{"24/7", "secure", "indoor"}},
	{Name: "Glyfada Beach Locker", Code: "GLY-567", Address: "Glyfada Beach, Athens 166 74, Greece", Lat: 37.8661, Lng: 23.7547, Capacity: 20, Features: []string{"secure", "outdoor", "24/7"}},
	{Name: "Athens Airport Locker", Code: "ATH-999", Address: "Athens International Airport, Spata 190 04, Greece", Lat: 37.9364, Lng: 23.9445, Capacity: 50, Features: []string{"24/7", "secure", "indoor", "climate-controlled"}},
}

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parcelflow/locker"
)

func (s *Server) handleListLockers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := locker.SearchParams{
		Status:   locker.Status(q.Get("status")),
		Lat:      queryFloat(q.Get("lat")),
		Lng:      queryFloat(q.Get("lng")),
		RadiusKm: queryFloat(q.Get("radius")),
	}
	lockers, err := s.lockers.List(r.Context(), params)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"lockers": lockers, "count": len(lockers)})
}

func (s *Server) handleGetLocker(w http.ResponseWriter, r *http.Request) {
	found, err := s.lockers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"locker": found})
}

type createLockerRequest struct {
	Name           string                 `json:"name"`
	Code           string                 `json:"code"`
	Address        string                 `json:"address"`
	Lat            float64                `json:"lat"`
	Lng            float64                `json:"lng"`
	Capacity       int                    `json:"capacity"`
	OperatingHours *locker.OperatingHours `json:"operatingHours"`
	Features       []string               `json:"features"`
}

func (s *Server) handleCreateLocker(w http.ResponseWriter, r *http.Request) {
	var req createLockerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.lockers.Create(r.Context(), locker.CreateParams{
		Name:           req.Name,
		Code:           req.Code,
		Address:        req.Address,
		Lat:            req.Lat,
		Lng:            req.Lng,
		Capacity:       req.Capacity,
		OperatingHours: req.OperatingHours,
		Features:       req.Features,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, envelope{"locker": created, "message": "locker created"})
}

type updateLockerRequest struct {
	Name           *string                `json:"name"`
	Address        *string                `json:"address"`
	Lat            *float64               `json:"lat"`
	Lng            *float64               `json:"lng"`
	Capacity       *int                   `json:"capacity"`
	AvailableSlots *int                   `json:"availableSlots"`
	Status         *locker.Status         `json:"status"`
	OperatingHours *locker.OperatingHours `json:"operatingHours"`
	Features       []string               `json:"features"`
}

func (s *Server) handleUpdateLocker(w http.ResponseWriter, r *http.Request) {
	var req updateLockerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.lockers.Update(r.Context(), chi.URLParam(r, "id"), locker.UpdateParams{
		Name:           req.Name,
		Address:        req.Address,
		Lat:            req.Lat,
		Lng:            req.Lng,
		Capacity:       req.Capacity,
		AvailableSlots: req.AvailableSlots,
		Status:         req.Status,
		OperatingHours: req.OperatingHours,
		Features:       req.Features,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"locker": updated, "message": "locker updated"})
}

func (s *Server) handleDeleteLocker(w http.ResponseWriter, r *http.Request) {
	if err := s.lockers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"message": "locker deleted"})
}

func (s *Server) handleSeedLockers(w http.ResponseWriter, r *http.Request) {
	seeded, err := s.lockers.Seed(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, envelope{"lockers": seeded, "count": len(seeded), "message": "lockers seeded"})
}

func queryFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

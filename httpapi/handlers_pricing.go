package httpapi

import (
	"net/http"

	"parcelflow/fault"
	"parcelflow/pricing"
)

type calculateRequest struct {
	PackageSize string   `json:"packageSize"`
	DistanceKm  *float64 `json:"distanceKm"`
}

func (s *Server) handlePricingCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.DistanceKm == nil || *req.DistanceKm < 0 {
		s.fail(w, r, fault.New(fault.Validation, "distanceKm is required and must be non-negative"))
		return
	}
	s.ok(w, http.StatusOK, envelope{"pricing": pricing.Calculate(req.PackageSize, *req.DistanceKm)})
}

type estimateRequest struct {
	PackageSize    string          `json:"packageSize"`
	LockerCoords   *pricing.Coords `json:"lockerCoords"`
	DeliveryCoords *pricing.Coords `json:"deliveryCoords"`
}

func (s *Server) handlePricingEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.LockerCoords == nil || req.DeliveryCoords == nil {
		s.fail(w, r, fault.New(fault.Validation, "lockerCoords and deliveryCoords are required"))
		return
	}
	s.ok(w, http.StatusOK, envelope{"pricing": pricing.Estimate(req.PackageSize, *req.LockerCoords, *req.DeliveryCoords)})
}

func (s *Server) handlePricingRates(w http.ResponseWriter, r *http.Request) {
	s.ok(w, http.StatusOK, envelope{"rates": pricing.Rates()})
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"parcelflow/fault"
	"parcelflow/job"
)

type createJobRequest struct {
	CustomerID           string           `json:"customerId"`
	CustomerWallet       string           `json:"customerWallet"`
	PackageSize          string           `json:"packageSize"`
	LockerLocation       string           `json:"lockerLocation"`
	LockerCode           string           `json:"lockerCode"`
	LockerCoords         *job.Coords      `json:"lockerCoords"`
	DeliveryAddress      string           `json:"deliveryAddress"`
	DeliveryCoords       *job.Coords      `json:"deliveryCoords"`
	DeliveryInstructions string           `json:"deliveryInstructions"`
	DistanceKm           float64          `json:"distanceKm"`
	Amount               decimal.Decimal  `json:"amount"`
	PlatformFee          *decimal.Decimal `json:"platformFee"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	created, err := s.jobs.Create(r.Context(), job.CreateParams{
		CustomerID:           callerID(r, req.CustomerID),
		CustomerWallet:       req.CustomerWallet,
		PackageSize:          job.PackageSize(req.PackageSize),
		LockerLocation:       req.LockerLocation,
		LockerCode:           req.LockerCode,
		LockerCoords:         req.LockerCoords,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryCoords:       req.DeliveryCoords,
		DeliveryInstructions: req.DeliveryInstructions,
		DistanceKm:           req.DistanceKm,
		Amount:               req.Amount,
		PlatformFee:          req.PlatformFee,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view := job.Project(created, job.Actor(created.CustomerID))
	s.ok(w, http.StatusCreated, envelope{"job": view, "message": "job created"})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := s.jobs.List(r.Context(), job.Filters{
		Status:      job.Status(q.Get("status")),
		CustomerID:  q.Get("customerId"),
		GigWorkerID: q.Get("gigWorkerId"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, q.Get("userId")))
	s.ok(w, http.StatusOK, envelope{"jobs": job.ProjectAll(jobs, actor), "count": len(jobs)})
}

func (s *Server) handleAvailableJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.ListAvailable(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, r.URL.Query().Get("userId")))
	s.ok(w, http.StatusOK, envelope{"jobs": job.ProjectAll(jobs, actor), "count": len(jobs)})
}

func (s *Server) handleMyJobs(w http.ResponseWriter, r *http.Request) {
	actor := job.Actor(callerID(r, r.URL.Query().Get("userId")))
	jobs, err := s.jobs.ListForActor(r.Context(), actor)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"jobs": job.ProjectAll(jobs, actor), "count": len(jobs)})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	found, err := s.jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, r.URL.Query().Get("userId")))
	s.ok(w, http.StatusOK, envelope{"job": job.Project(found, actor)})
}

type acceptJobRequest struct {
	GigWorkerID     string `json:"gigWorkerId"`
	GigWorkerWallet string `json:"gigWorkerWallet"`
	GigWorkerName   string `json:"gigWorkerName"`
}

func (s *Server) handleAcceptJob(w http.ResponseWriter, r *http.Request) {
	var req acceptJobRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.jobs.Accept(r.Context(), chi.URLParam(r, "id"), job.AcceptParams{
		GigWorkerID:     callerID(r, req.GigWorkerID),
		GigWorkerWallet: req.GigWorkerWallet,
		GigWorkerName:   req.GigWorkerName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, req.GigWorkerID))
	s.ok(w, http.StatusOK, envelope{
		"job":        job.Project(res.Job, actor),
		"lockerCode": res.LockerCode,
		"message":    "job accepted",
	})
}

type workerActionRequest struct {
	GigWorkerID string `json:"gigWorkerId"`
}

func (s *Server) handleDeclineJob(w http.ResponseWriter, r *http.Request) {
	var req workerActionRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, req.GigWorkerID))
	updated, err := s.jobs.Decline(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"job": job.Project(updated, actor), "message": "job declined"})
}

func (s *Server) handleConfirmPickup(w http.ResponseWriter, r *http.Request) {
	var req workerActionRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, req.GigWorkerID))
	res, err := s.jobs.ConfirmPickup(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{
		"job":                  job.Project(res.Job, actor),
		"deliveryAddress":      res.DeliveryAddress,
		"deliveryInstructions": res.DeliveryInstructions,
		"message":              "pickup confirmed",
	})
}

type deliverJobRequest struct {
	GigWorkerID              string `json:"gigWorkerId"`
	DeliveryConfirmationCode string `json:"deliveryConfirmationCode"`
}

func (s *Server) handleConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliverJobRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, req.GigWorkerID))
	res, err := s.jobs.ConfirmDelivery(r.Context(), chi.URLParam(r, "id"), actor, req.DeliveryConfirmationCode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{
		"job":     job.Project(res.Job, actor),
		"payout":  res.Payout,
		"message": "delivery confirmed",
	})
}

type paymentRequest struct {
	TransactionHash string           `json:"transactionHash"`
	ContractJobID   *string          `json:"contractJobId"`
	ContractAddress *string          `json:"contractAddress"`
	Network         *string          `json:"network"`
	ChainID         *int64           `json:"chainId"`
	Cryptocurrency  *string          `json:"cryptocurrency"`
	TokenSymbol     *string          `json:"tokenSymbol"`
	AmountCrypto    *decimal.Decimal `json:"amountCrypto"`
}

func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	updated, err := s.jobs.ConfirmPayment(r.Context(), chi.URLParam(r, "id"), job.PaymentParams{
		TransactionHash: req.TransactionHash,
		ContractJobID:   req.ContractJobID,
		ContractAddress: req.ContractAddress,
		Network:         req.Network,
		ChainID:         req.ChainID,
		Cryptocurrency:  req.Cryptocurrency,
		TokenSymbol:     req.TokenSymbol,
		AmountCrypto:    req.AmountCrypto,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, updated.CustomerID))
	s.ok(w, http.StatusOK, envelope{"job": job.Project(updated, actor), "message": "payment confirmed"})
}

type customerActionRequest struct {
	CustomerID string `json:"customerId"`
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	var req customerActionRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	actor := job.Actor(callerID(r, req.CustomerID))
	updated, err := s.jobs.Cancel(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"job": job.Project(updated, actor), "message": "job cancelled"})
}

type rateJobRequest struct {
	CustomerID string `json:"customerId"`
	Rating     *int   `json:"rating"`
}

func (s *Server) handleRateJob(w http.ResponseWriter, r *http.Request) {
	var req rateJobRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Rating == nil {
		s.fail(w, r, fault.New(fault.Validation, "rating is required"))
		return
	}
	actor := job.Actor(callerID(r, req.CustomerID))
	updated, err := s.jobs.Rate(r.Context(), chi.URLParam(r, "id"), actor, *req.Rating)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"job": job.Project(updated, actor), "message": "worker rated"})
}

package httpapi

import (
	"net/http"

	"parcelflow/auth"
	"parcelflow/fault"
)

type nonceRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func (s *Server) handleNonce(w http.ResponseWriter, r *http.Request) {
	var req nonceRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	nonce, err := s.auth.Nonce(req.WalletAddress)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"nonce": nonce})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusCreated, envelope{"token": res.Token, "user": res.User, "message": "account created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"token": res.Token, "user": res.User})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := tokenIdentity(r)
	if identity == "" {
		s.fail(w, r, fault.New(fault.Unauthorized, "missing or invalid token"))
		return
	}
	u, err := s.auth.Me(r.Context(), identity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, http.StatusOK, envelope{"user": u})
}

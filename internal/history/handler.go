package history

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	auth "Taper/internal/auth"
	cone "Taper/internal/calc/cone"
	repo "Taper/internal/repo"

	"github.com/gorilla/mux"
)

// Handler stores and lists the solved cones of the signed-in user.
type Handler struct {
	Repo repo.Repository
	Cone *cone.Handler
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var input cone.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s, err := cone.Solve(input)
	if err != nil {
		http.Error(w, cone.ErrorMessage(h.Cone.Labels.Lookup(h.Cone.Locale(r)), err), http.StatusBadRequest)
		return
	}
	c := repo.Calculation{UserID: userID, Input: input, Result: s, Solved: s.Solved.String()}
	if c.ID, err = h.Repo.SaveCalculation(r.Context(), c); err != nil {
		log.Printf("SaveCalculation Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	calcs, err := h.Repo.ListCalculations(r.Context(), userID)
	if err != nil {
		log.Printf("ListCalculations Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if calcs == nil {
		calcs = []repo.Calculation{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(calcs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	c, err := h.Repo.GetCalculation(r.Context(), userID, id)
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Calculation not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("GetCalculation Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lioncard-backend/lib/scrapers/campuscard"
	"lioncard-backend/services/lioncard"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type mealPlanJson struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	TotalMeals         int     `json:"total_meals"`
	TotalDiningDollars float64 `json:"total_dining_dollars"`
	TotalGuestSwipes   int     `json:"total_guest_swipes"`
}

type transactionJson struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description"`
	Account     string `json:"account"`
	Amount      string `json:"amount"`
}

type snapshotJson struct {
	DiningDollars *string           `json:"dining_dollars"`
	LionBucks     *string           `json:"lion_bucks"`
	MealSwipes    *string           `json:"meal_swipes"`
	GuestSwipes   *string           `json:"guest_swipes"`
	MealPlan      *mealPlanJson     `json:"meal_plan"`
	Transactions  []transactionJson `json:"transactions"`
}

type stateJson struct {
	Snapshot        *snapshotJson `json:"snapshot"`
	Username        string        `json:"username,omitempty"`
	IsLoading       bool          `json:"is_loading"`
	IsAuthenticated bool          `json:"is_authenticated"`
	Error           string        `json:"error,omitempty"`
}

func snapshotToJson(snapshot *campuscard.Snapshot) *snapshotJson {
	if snapshot == nil {
		return nil
	}
	out := &snapshotJson{
		DiningDollars: snapshot.DiningDollars,
		LionBucks:     snapshot.LionBucks,
		MealSwipes:    snapshot.MealSwipes,
		GuestSwipes:   snapshot.GuestSwipes,
		Transactions:  []transactionJson{},
	}
	if snapshot.Plan != nil {
		out.MealPlan = &mealPlanJson{
			Code:               snapshot.Plan.Code,
			Name:               snapshot.Plan.Name,
			TotalMeals:         snapshot.Plan.TotalMeals,
			TotalDiningDollars: snapshot.Plan.TotalDiningDollars,
			TotalGuestSwipes:   snapshot.Plan.TotalGuestSwipes,
		}
	}
	for _, tx := range snapshot.Transactions {
		out.Transactions = append(out.Transactions, transactionJson{
			Date:        tx.Date,
			Time:        tx.Time,
			Description: tx.Description,
			Account:     tx.Account,
			Amount:      tx.Amount,
		})
	}
	return out
}

func stateToJson(state lioncard.State) stateJson {
	out := stateJson{
		Snapshot:        snapshotToJson(state.Snapshot),
		IsLoading:       state.IsLoading,
		IsAuthenticated: state.IsAuthenticated,
	}
	if state.Credentials != nil {
		out.Username = state.Credentials.Username
	}
	if state.LastError != nil {
		out.Error = state.LastError.Error()
	}
	return out
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to write response body", "err", err)
	}
}

// errorStatus maps pipeline errors onto response codes: the caller's
// fault (blank or refused credentials) vs. the portal's fault.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, lioncard.ErrEmptyCredentials):
		return http.StatusBadRequest
	case errors.Is(err, campuscard.ErrLoginRejected):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func registerRoutes(mux *http.ServeMux, service *lioncard.Service) {
	mux.HandleFunc("GET /v1/snapshot", func(w http.ResponseWriter, r *http.Request) {
		writeJson(w, http.StatusOK, stateToJson(service.State()))
	})

	mux.HandleFunc("POST /v1/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJson(w, http.StatusBadRequest, stateJson{Error: "invalid request body"})
			return
		}
		_, err := service.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeJson(w, errorStatus(err), stateToJson(service.State()))
			return
		}
		writeJson(w, http.StatusOK, stateToJson(service.State()))
	})

	mux.HandleFunc("POST /v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := service.Logout(r.Context()); err != nil {
			writeJson(w, http.StatusInternalServerError, stateJson{Error: err.Error()})
			return
		}
		writeJson(w, http.StatusOK, stateToJson(service.State()))
	})

	mux.HandleFunc("POST /v1/refresh", func(w http.ResponseWriter, r *http.Request) {
		if err := service.Refresh(r.Context()); err != nil {
			writeJson(w, errorStatus(err), stateToJson(service.State()))
			return
		}
		writeJson(w, http.StatusOK, stateToJson(service.State()))
	})
}

package biobdriver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-biobase-guidance-driver/guidance"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const apiTimeout = 30 * time.Second

type acquireRequest struct {
	Position   guidance.Position   `json:"position"`
	Impression guidance.Impression `json:"impression"`
}

type overlayRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Warn("write response", zap.Error(err))
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, guidance.ErrUnsupportedCombination):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotOpen), errors.Is(err, ErrNotLive), errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	if _, ok := VendorCode(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// NewRouter exposes the operator API. ws may be nil.
func NewRouter(d *Device, ws http.Handler) *mux.Router {
	submit := func(w http.ResponseWriter, r *http.Request, ev Event) {
		ctx, cancel := context.WithTimeout(r.Context(), apiTimeout)
		defer cancel()
		if err := d.Submit(ctx, ev); err != nil {
			writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, d.State())
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK\n"))
	}).Methods("GET")
	r.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.State())
	}).Methods("GET")
	r.HandleFunc("/open", func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, Event{Kind: EventCmdOpen})
	}).Methods("POST")
	r.HandleFunc("/close", func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, Event{Kind: EventCmdClose})
	}).Methods("POST")
	r.HandleFunc("/acquire", func(w http.ResponseWriter, r *http.Request) {
		var req acquireRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		submit(w, r, Event{Kind: EventCmdAcquire, Position: req.Position, Impression: req.Impression})
	}).Methods("POST")
	r.HandleFunc("/cancel", func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, Event{Kind: EventCmdCancel})
	}).Methods("POST")
	r.HandleFunc("/acquisition/override", func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, Event{Kind: EventCmdOverride})
	}).Methods("POST")
	r.HandleFunc("/keys/{key}", func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, Event{Kind: EventUserInput, Key: mux.Vars(r)["key"]})
	}).Methods("POST")
	r.HandleFunc("/beep", func(w http.ResponseWriter, r *http.Request) {
		submit(w, r, Event{Kind: EventCmdBeep})
	}).Methods("POST")
	r.HandleFunc("/overlay", func(w http.ResponseWriter, r *http.Request) {
		var req overlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		submit(w, r, Event{Kind: EventCmdOverlay, Text: req.Text})
	}).Methods("POST")
	if ws != nil {
		r.Handle("/ws", ws).Methods("GET")
	}
	return r
}

package checkins

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/raceplan/internal/telemetry/metrics"
	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"github.com/2beens/raceplan/internal/workouts"
	"github.com/2beens/raceplan/pkg"
)

type checkinsRepo interface {
	Upsert(ctx context.Context, checkIn CheckIn) (*CheckIn, error)
	CreateMany(ctx context.Context, checkIns []CheckIn) error
	GetAll(ctx context.Context) ([]CheckIn, error)
	GetByDate(ctx context.Context, date string) (*CheckIn, error)
	Delete(ctx context.Context, date string) error
	DeleteAll(ctx context.Context) error
}

type ListResponse struct {
	CheckIns []CheckIn `json:"checkIns"`
	Total    int       `json:"total"`
}

type DeleteResponse struct {
	DeletedDate string `json:"deletedDate"`
}

type Handler struct {
	repo    checkinsRepo
	metrics *metrics.Manager
}

func NewHandler(repo checkinsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkins.upsert")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var input CheckInInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("new check-in, unmarshal json params: %s", err)
		http.Error(w, "add check-in failed", http.StatusBadRequest)
		return
	}

	if !workouts.ValidDate(input.Date) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	saved, err := handler.repo.Upsert(ctx, CheckIn{
		ID:           uuid.NewString(),
		Date:         input.Date,
		WeightKg:     input.WeightKg,
		SleepHours:   input.SleepHours,
		Steps:        input.Steps,
		Energy:       input.Energy,
		Pain:         input.Pain,
		PainLocation: input.PainLocation,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		log.Errorf("failed to save check-in for %s: %s", input.Date, err)
		http.Error(w, "error, failed to save check-in", http.StatusInternalServerError)
		return
	}

	if handler.metrics != nil {
		handler.metrics.CounterCheckIns.Inc()
	}

	savedJson, err := json.Marshal(saved)
	if err != nil {
		log.Errorf("failed to marshal check-in: %s", err)
		http.Error(w, "error, failed to save check-in", http.StatusInternalServerError)
		return
	}

	log.Debugf("check-in saved for %s: %s", saved.Date, saved.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, savedJson, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkins.list")
	defer span.End()

	checkIns, err := handler.repo.GetAll(ctx)
	if err != nil {
		log.Errorf("list check-ins error: %s", err)
		http.Error(w, "failed to get check-ins", http.StatusInternalServerError)
		return
	}

	if checkIns == nil {
		checkIns = []CheckIn{}
	}

	listRespJson, err := json.Marshal(ListResponse{
		CheckIns: checkIns,
		Total:    len(checkIns),
	})
	if err != nil {
		log.Errorf("marshal check-ins error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listRespJson, http.StatusOK)
}

func (handler *Handler) HandleGetByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkins.getByDate")
	defer span.End()

	vars := mux.Vars(r)
	date := vars["date"]
	if !workouts.ValidDate(date) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	checkIn, err := handler.repo.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, ErrCheckInNotFound) {
			http.Error(w, "check-in not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get check-in for %s: %s", date, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	checkInJson, err := json.Marshal(checkIn)
	if err != nil {
		log.Errorf("failed to marshal check-in: %s", err)
		http.Error(w, "failed to marshal check-in", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, checkInJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.checkins.delete")
	defer span.End()

	vars := mux.Vars(r)
	date := vars["date"]
	if !workouts.ValidDate(date) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, date); err != nil {
		if errors.Is(err, ErrCheckInNotFound) {
			http.Error(w, "check-in not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete check-in for %s: %s", date, err)
		http.Error(w, "check-in not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteResponse{
		DeletedDate: date,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

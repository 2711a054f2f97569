package workouts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"github.com/2beens/raceplan/pkg"
)

type ListResponse struct {
	Workouts []WorkoutDay `json:"workouts"`
	Total    int          `json:"total"`
}

type MoveRequest struct {
	NewDate string `json:"new_date"`
}

type StatusRequest struct {
	Status Status `json:"status"`
}

type InitializePlanRequest struct {
	StartDate string `json:"start_date"`
}

type DeleteResponse struct {
	DeletedID string `json:"deletedId"`
}

type UndoResponse struct {
	Undone        bool `json:"undone"`
	UndoStackSize int  `json:"undoStackSize"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
	Total   int            `json:"total"`
}

type Handler struct {
	manager  *Manager
	analyzer *Analyzer
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{
		manager:  manager,
		analyzer: NewAnalyzer(manager.repo),
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	workoutDays, err := handler.manager.ListAll(ctx)
	if err != nil {
		log.Errorf("list workouts error: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	if workoutDays == nil {
		workoutDays = []WorkoutDay{}
	}

	listRespJson, err := json.Marshal(ListResponse{
		Workouts: workoutDays,
		Total:    len(workoutDays),
	})
	if err != nil {
		log.Errorf("marshal workouts error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, listRespJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	workout, err := handler.manager.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %s: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var input WorkoutDayInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if input.Title == "" {
		http.Error(w, "error, title empty", http.StatusBadRequest)
		return
	}
	if !ValidDate(input.Date) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}
	if !input.Intensity.Valid() {
		http.Error(w, "error, invalid intensity", http.StatusBadRequest)
		return
	}

	created, err := handler.manager.Create(ctx, input)
	if err != nil {
		log.Errorf("failed to add new workout [%s] [%s]: %s", input.Date, input.Title, err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	createdJson, err := json.Marshal(created)
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout added: [%s] [%s]: %s", created.Date, created.Title, created.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, createdJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var update WorkoutUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update workout, unmarshal json params: %s", err)
		http.Error(w, "update workout failed", http.StatusBadRequest)
		return
	}

	if update.Date != nil && !ValidDate(*update.Date) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}
	if update.Intensity != nil && !update.Intensity.Valid() {
		http.Error(w, "error, invalid intensity", http.StatusBadRequest)
		return
	}

	updated, err := handler.manager.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update workout %s: %s", id, err)
		http.Error(w, "error, failed to update workout", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal updated workout: %s", err)
		http.Error(w, "failed to marshal updated workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout updated: [%s] [%s]: %s", updated.Date, updated.Title, updated.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, updatedJson, http.StatusOK)
}

func (handler *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.move")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var moveReq MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&moveReq); err != nil {
		log.Tracef("move workout, unmarshal json params: %s", err)
		http.Error(w, "move workout failed", http.StatusBadRequest)
		return
	}

	if !ValidDate(moveReq.NewDate) {
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	moved, err := handler.manager.Move(ctx, id, moveReq.NewDate)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkoutNotFound):
			http.Error(w, "workout not found", http.StatusNotFound)
		case errors.Is(err, ErrDateOccupied):
			http.Error(w, fmt.Sprintf("date %s already holds a workout", moveReq.NewDate), http.StatusConflict)
		default:
			log.Errorf("failed to move workout %s to %s: %s", id, moveReq.NewDate, err)
			http.Error(w, "error, failed to move workout", http.StatusInternalServerError)
		}
		return
	}

	movedJson, err := json.Marshal(moved)
	if err != nil {
		log.Errorf("failed to marshal moved workout: %s", err)
		http.Error(w, "failed to marshal moved workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, movedJson, http.StatusOK)
}

func (handler *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.status")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var statusReq StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&statusReq); err != nil {
		log.Tracef("workout status change, unmarshal json params: %s", err)
		http.Error(w, "workout status change failed", http.StatusBadRequest)
		return
	}

	if !statusReq.Status.Valid() {
		http.Error(w, "error, invalid status", http.StatusBadRequest)
		return
	}

	updated, err := handler.manager.MarkStatus(ctx, id, statusReq.Status)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to set workout %s status to %s: %s", id, statusReq.Status, err)
		http.Error(w, "error, failed to change workout status", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, updatedJson, http.StatusOK)
}

func (handler *Handler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.undo")
	defer span.End()

	sizeBefore := handler.manager.UndoStackSize()
	if err := handler.manager.Undo(ctx); err != nil {
		log.Errorf("failed to undo last action: %s", err)
		http.Error(w, "error, failed to undo last action", http.StatusInternalServerError)
		return
	}

	undoRespJson, err := json.Marshal(UndoResponse{
		Undone:        sizeBefore > 0,
		UndoStackSize: handler.manager.UndoStackSize(),
	})
	if err != nil {
		log.Errorf("failed to marshal undo response: %s", err)
		http.Error(w, "failed to marshal undo response", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, undoRespJson, http.StatusOK)
}

func (handler *Handler) HandleInitializePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.initializePlan")
	defer span.End()

	var initReq InitializePlanRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&initReq); err != nil {
			log.Tracef("initialize plan, unmarshal json params: %s", err)
			http.Error(w, "initialize plan failed", http.StatusBadRequest)
			return
		}
	}

	start := handler.manager.PlanStartDate()
	if initReq.StartDate != "" {
		parsed, err := time.Parse(DateLayout, initReq.StartDate)
		if err != nil {
			http.Error(w, "error, invalid start date", http.StatusBadRequest)
			return
		}
		start = parsed
	}

	created, err := handler.manager.InitializePlan(ctx, start)
	if err != nil {
		if errors.Is(err, ErrPlanNotEmpty) {
			http.Error(w, "plan already initialized, wipe it first", http.StatusConflict)
			return
		}
		log.Errorf("failed to initialize plan: %s", err)
		http.Error(w, "error, failed to initialize plan", http.StatusInternalServerError)
		return
	}

	createdJson, err := json.Marshal(ListResponse{
		Workouts: created,
		Total:    len(created),
	})
	if err != nil {
		log.Errorf("failed to marshal initialized plan: %s", err)
		http.Error(w, "failed to marshal initialized plan", http.StatusInternalServerError)
		return
	}

	log.Debugf("plan initialized: %d workout days from %s", len(created), start.Format(DateLayout))
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, createdJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	vars := mux.Vars(r)
	id := vars["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.manager.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %s: %s", id, err)
		http.Error(w, "workout not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteAll")
	defer span.End()

	if err := handler.manager.DeleteAll(ctx); err != nil {
		log.Errorf("failed to delete all workouts: %s", err)
		http.Error(w, "error, failed to delete all workouts", http.StatusInternalServerError)
		return
	}

	log.Debug("all workouts deleted")
	pkg.WriteJSONResponseOK(w, `{"deleted": "all"}`)
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.stats")
	defer span.End()

	stats, err := handler.analyzer.OverallStats(ctx)
	if err != nil {
		log.Errorf("failed to get workout stats: %s", err)
		http.Error(w, "failed to get workout stats", http.StatusInternalServerError)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal workout stats: %s", err)
		http.Error(w, "failed to marshal workout stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}

func (handler *Handler) HandleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.weeklyStats")
	defer span.End()

	vars := mux.Vars(r)
	weekStr := vars["week"]
	week, err := strconv.Atoi(weekStr)
	if err != nil {
		http.Error(w, "error, week NaN", http.StatusBadRequest)
		return
	}
	if week < 1 {
		http.Error(w, "error, invalid week", http.StatusBadRequest)
		return
	}

	stats, err := handler.analyzer.WeeklyStats(ctx, week)
	if err != nil {
		log.Errorf("failed to get weekly stats for week %d: %s", week, err)
		http.Error(w, "failed to get weekly stats", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		http.Error(w, "no workouts for given week", http.StatusNotFound)
		return
	}

	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal weekly stats: %s", err)
		http.Error(w, "failed to marshal weekly stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, statsJson, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			http.Error(w, "error, invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := handler.manager.History(ctx, limit)
	if err != nil {
		log.Errorf("failed to get workout history: %s", err)
		http.Error(w, "failed to get workout history", http.StatusInternalServerError)
		return
	}

	if entries == nil {
		entries = []HistoryEntry{}
	}

	historyJson, err := json.Marshal(HistoryResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("failed to marshal workout history: %s", err)
		http.Error(w, "failed to marshal workout history", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, historyJson, http.StatusOK)
}

package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"github.com/2beens/raceplan/pkg"
)

type ImportResponse struct {
	ImportedWorkouts int `json:"importedWorkouts"`
	ImportedCheckIns int `json:"importedCheckIns"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.backup.export")
	defer span.End()

	archive, err := handler.service.Export(ctx)
	if err != nil {
		log.Errorf("failed to export data: %s", err)
		http.Error(w, "failed to export data", http.StatusInternalServerError)
		return
	}

	archiveJson, err := json.Marshal(archive)
	if err != nil {
		log.Errorf("failed to marshal archive: %s", err)
		http.Error(w, "failed to marshal archive", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("raceplan-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, archiveJson, http.StatusOK)
}

func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.backup.import")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var archive Archive
	if err := json.NewDecoder(r.Body).Decode(&archive); err != nil {
		log.Tracef("import archive, unmarshal json params: %s", err)
		http.Error(w, "import failed, invalid archive json", http.StatusBadRequest)
		return
	}

	if err := handler.service.Import(ctx, archive); err != nil {
		if errors.Is(err, ErrInvalidArchive) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to import archive: %s", err)
		http.Error(w, "failed to import archive", http.StatusInternalServerError)
		return
	}

	importRespJson, err := json.Marshal(ImportResponse{
		ImportedWorkouts: len(archive.Workouts),
		ImportedCheckIns: len(archive.CheckIns),
	})
	if err != nil {
		log.Errorf("failed to marshal import response: %s", err)
		http.Error(w, "failed to marshal import response", http.StatusInternalServerError)
		return
	}

	log.Debugf("archive imported: %d workouts, %d check-ins", len(archive.Workouts), len(archive.CheckIns))
	pkg.WriteJSONResponseOK(w, string(importRespJson))
}

func (handler *Handler) HandleICalExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.backup.icalExport")
	defer span.End()

	workoutDays, err := handler.service.workouts.GetAll(ctx)
	if err != nil {
		log.Errorf("failed to get workouts for ical export: %s", err)
		http.Error(w, "failed to export calendar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="raceplan.ics"`)
	pkg.WriteResponseBytes(w, pkg.ContentType.ICal, []byte(GenerateICal(workoutDays)), http.StatusOK)
}

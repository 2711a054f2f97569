package plan

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/raceplan/pkg"
)

// Handler serves the plan template metadata.
type Handler struct {
	startDate time.Time
}

func NewHandler(startDate time.Time) *Handler {
	return &Handler{
		startDate: startDate,
	}
}

func (handler *Handler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	metaJson, err := json.Marshal(MetadataFor(handler.startDate))
	if err != nil {
		log.Errorf("failed to marshal plan metadata: %s", err)
		http.Error(w, "failed to marshal plan metadata", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, metaJson, http.StatusOK)
}

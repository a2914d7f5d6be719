package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/emotive/internal/reports"
	"github.com/JaimeStill/emotive/internal/workflow"
	"github.com/JaimeStill/emotive/pkg/handlers"
	"github.com/JaimeStill/emotive/pkg/routes"
	"github.com/JaimeStill/emotive/pkg/storage"
)

var (
	errInvalidRunID    = errors.New("invalid run id")
	errUnknownArtifact = errors.New("unknown artifact")
)

// ArtifactPage is one page of published report artifacts.
type ArtifactPage struct {
	Artifacts  []reports.Artifact `json:"artifacts"`
	NextMarker string             `json:"next_marker,omitempty"`
}

// ArtifactHandler serves the report artifacts published for runs. Every
// lookup is scoped to a run's artifact prefix and the report file names.
type ArtifactHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func NewArtifactHandler(store storage.System, logger *slog.Logger, maxListSize int32) *ArtifactHandler {
	return &ArtifactHandler{
		store:       store,
		logger:      logger.With("handler", "artifacts"),
		maxListSize: maxListSize,
	}
}

func (h *ArtifactHandler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/artifacts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.ListAll},
			{Method: "GET", Pattern: "/{id}", Handler: h.ListRun},
			{Method: "GET", Pattern: "/{id}/{name}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/{name}/download", Handler: h.Download},
		},
	}
}

func (h *ArtifactHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "runs/")
}

func (h *ArtifactHandler) ListRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidRunID)
		return
	}
	h.list(w, r, workflow.ArtifactPrefix(id)+"/")
}

func (h *ArtifactHandler) Find(w http.ResponseWriter, r *http.Request) {
	key, err := artifactKey(r)
	if err != nil {
		handlers.RespondError(w, h.logger, artifactStatus(err), err)
		return
	}

	meta, err := h.store.Find(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, toArtifact(*meta))
}

func (h *ArtifactHandler) Download(w http.ResponseWriter, r *http.Request) {
	key, err := artifactKey(r)
	if err != nil {
		handlers.RespondError(w, h.logger, artifactStatus(err), err)
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("artifact download interrupted", "key", key, "error", err)
	}
}

func (h *ArtifactHandler) list(w http.ResponseWriter, r *http.Request, prefix string) {
	maxResults, err := storage.ParseMaxResults(r.URL.Query().Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), prefix, r.URL.Query().Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	page := ArtifactPage{
		Artifacts:  make([]reports.Artifact, 0, len(result.Blobs)),
		NextMarker: result.NextMarker,
	}
	for _, b := range result.Blobs {
		if reports.IsArtifactFile(path.Base(b.Key)) {
			page.Artifacts = append(page.Artifacts, toArtifact(b))
		}
	}

	handlers.RespondJSON(w, http.StatusOK, page)
}

func artifactKey(r *http.Request) (string, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return "", errInvalidRunID
	}

	name := r.PathValue("name")
	if strings.ContainsRune(name, '/') || !reports.IsArtifactFile(name) {
		return "", fmt.Errorf("%w: %q", errUnknownArtifact, name)
	}

	return path.Join(workflow.ArtifactPrefix(id), name), nil
}

func artifactStatus(err error) int {
	if errors.Is(err, errUnknownArtifact) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func toArtifact(b storage.BlobMeta) reports.Artifact {
	return reports.Artifact{
		Key:         b.Key,
		ContentType: b.ContentType,
		Size:        int(b.ContentLength),
	}
}

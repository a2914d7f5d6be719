package api

import (
	"net/http"

	"github.com/JaimeStill/emotive/internal/config"
	"github.com/JaimeStill/emotive/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Runs.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		NewArtifactHandler(runtime.Storage, runtime.Logger, cfg.Storage.MaxListSize).Routes(),
	)
}

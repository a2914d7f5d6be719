package workflow

import (
	"log/slog"

	"github.com/JaimeStill/emotive/internal/classifier"
	"github.com/JaimeStill/emotive/internal/emotions"
	"github.com/JaimeStill/emotive/internal/reports"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure and
// the configured classifier. A nil Sink skips publishing.
type Runtime struct {
	Classifier classifier.Classifier
	Sink       reports.Sink
	Options    emotions.Options
	Logger     *slog.Logger
}

package reports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/JaimeStill/emotive/internal/emotions"
)

// Artifact file names written for every run.
const (
	FileUnconditionalTable = "all_table.csv"
	FileConditionalTable   = "separate_table.csv"
	FileUnconditionalPlot  = "all_plot.svg"
	FileConditionalPlot    = "separate_plot.svg"
)

// IsArtifactFile reports whether name is one of the files Publish writes.
func IsArtifactFile(name string) bool {
	switch name {
	case FileUnconditionalTable, FileConditionalTable, FileUnconditionalPlot, FileConditionalPlot:
		return true
	}
	return false
}

const (
	contentTypeCSV = "text/csv"
	contentTypeSVG = "image/svg+xml"
)

// Sink receives rendered artifacts. storage.System satisfies it.
type Sink interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
}

// Deleter is implemented by sinks that can remove an uploaded artifact.
// Publish uses it to roll back a partially uploaded set.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Artifact describes one published file.
type Artifact struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Publish renders both reports and uploads the four artifacts under prefix.
// Every artifact is rendered before the first upload. When an upload fails,
// artifacts already uploaded are deleted if sink is a Deleter, and no
// artifacts are returned.
func Publish(
	ctx context.Context,
	sink Sink,
	prefix string,
	unconditional emotions.UnconditionalReport,
	conditional emotions.ConditionalReport,
) ([]Artifact, error) {
	type rendered struct {
		name        string
		contentType string
		body        bytes.Buffer
	}

	files := []*rendered{
		{name: FileUnconditionalTable, contentType: contentTypeCSV},
		{name: FileConditionalTable, contentType: contentTypeCSV},
		{name: FileUnconditionalPlot, contentType: contentTypeSVG},
		{name: FileConditionalPlot, contentType: contentTypeSVG},
	}

	if err := WriteCSV(&files[0].body, UnconditionalTable(unconditional)); err != nil {
		return nil, fmt.Errorf("render %s: %w", files[0].name, err)
	}
	if err := WriteCSV(&files[1].body, ConditionalTable(conditional)); err != nil {
		return nil, fmt.Errorf("render %s: %w", files[1].name, err)
	}
	if err := RenderSVG(&files[2].body, UnconditionalChart(unconditional)); err != nil {
		return nil, fmt.Errorf("render %s: %w", files[2].name, err)
	}
	if err := RenderSVG(&files[3].body, ConditionalChart(conditional)); err != nil {
		return nil, fmt.Errorf("render %s: %w", files[3].name, err)
	}

	artifacts := make([]Artifact, 0, len(files))
	for _, f := range files {
		key := path.Join(prefix, f.name)
		size := f.body.Len()

		if err := sink.Upload(ctx, key, &f.body, f.contentType); err != nil {
			err = fmt.Errorf("upload %s: %w", key, err)
			if rbErr := rollback(ctx, sink, artifacts); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
			return nil, err
		}
		artifacts = append(artifacts, Artifact{Key: key, ContentType: f.contentType, Size: size})
	}

	return artifacts, nil
}

func rollback(ctx context.Context, sink Sink, uploaded []Artifact) error {
	d, ok := sink.(Deleter)
	if !ok {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, a := range uploaded {
		if err := d.Delete(ctx, a.Key); err != nil {
			errs = append(errs, fmt.Errorf("rollback %s: %w", a.Key, err))
		}
	}
	return errors.Join(errs...)
}

// DirSink writes artifacts beneath a local directory, creating parents as needed.
type DirSink string

// Upload writes reader to a temporary file beside the target and renames it
// into place, so the target is never observed half written.
func (d DirSink) Upload(ctx context.Context, key string, reader io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := d.path(key)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("chmod file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename file: %w", err)
	}
	return nil
}

// Delete removes the file at key. A missing file is not an error.
func (d DirSink) Delete(_ context.Context, key string) error {
	if err := os.Remove(d.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (d DirSink) path(key string) string {
	return filepath.Join(string(d), filepath.FromSlash(key))
}

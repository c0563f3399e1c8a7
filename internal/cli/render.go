package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/revelation/internal/mesh"
	"github.com/roach88/revelation/internal/projection"
)

// RenderOptions holds flags for the render and compose commands.
type RenderOptions struct {
	*RootOptions
	Source EventSource
	Out    string
}

// RenderResult describes a written artifact.
type RenderResult struct {
	Contract  string   `json:"contract"`
	Base      string   `json:"base,omitempty"`
	MediaType string   `json:"media_type"`
	Digest    string   `json:"digest"`
	Size      int      `json:"size"`
	Events    int      `json:"events"`
	Skipped   int      `json:"skipped"`
	Files     []string `json:"files"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <contract>",
		Short: "Replay an event log into an artifact",
		Long: `Replay an event log through a contract and write the artifact.

Without --out the artifact bytes go to stdout. With --out a summary is
printed instead. The obj and svg-obj contracts write two files: the
--out path (extension .obj) and a sibling .mtl material library.

Exit codes:
  0 - Artifact written
  2 - Command error (unknown contract, missing events, etc.)

Examples:
  revelation render svg --events canvas.jsonl > canvas.svg
  revelation render gltf --events canvas.jsonl --out canvas.gltf
  revelation render obj --db revelation.db --space canvas --out canvas.obj`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], false, cmd)
		},
	}

	opts.Source.register(cmd)
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")

	return cmd
}

func runRender(opts *RenderOptions, name string, derivedOnly bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}

	registry := projection.NewRegistry(sess.cfg.Projection, projection.WithLogger(sess.logger))
	entry, ok := registry.Get(name)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownContract,
			fmt.Sprintf("unknown contract %q", name),
			map[string]any{"available": registry.Names()})
	}
	if derivedOnly && !entry.Derived() {
		return formatter.Fail(ExitCommandError, ErrCodeUnknownContract,
			fmt.Sprintf("%s is not a derived contract", name),
			map[string]any{"available": derivedNames(registry)})
	}

	loaded, err := opts.Source.load(context.Background(), sess)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Loaded %d event(s) from %s", len(loaded.Events), loaded.Origin)

	artifact, err := registry.Run(name, loaded.Events)
	if err != nil {
		if errors.Is(err, projection.ErrUnknownContract) {
			return formatter.Fail(ExitCommandError, ErrCodeUnknownContract, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "render failed", err)
	}

	if opts.Out == "" || opts.Out == "-" {
		_, err := cmd.OutOrStdout().Write(artifact.Data)
		formatter.VerboseLog("Wrote %d bytes, digest %s", artifact.Size, artifact.Digest)
		return err
	}

	files, err := writeArtifact(opts.Out, artifact)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	result := RenderResult{
		Contract:  artifact.Contract,
		Base:      entry.Base,
		MediaType: artifact.MediaType,
		Digest:    artifact.Digest,
		Size:      artifact.Size,
		Events:    len(loaded.Events),
		Skipped:   loaded.Stats.Skipped,
		Files:     files,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputRenderText(cmd, result)
}

// writeArtifact writes the artifact to path. OBJ artifacts are split
// into the .obj text, which references its library via mtllib, and the
// .mtl library itself.
func writeArtifact(path string, artifact projection.Artifact) ([]string, error) {
	obj, ok := artifact.Value.(mesh.OBJ)
	if !ok {
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		return []string{path}, nil
	}

	objPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".obj"
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"

	objText := "mtllib " + filepath.Base(mtlPath) + "\n" + obj.Obj
	if obj.Obj != "" {
		objText += "\n"
	}
	if err := os.WriteFile(objPath, []byte(objText), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", objPath, err)
	}
	if err := os.WriteFile(mtlPath, []byte(obj.Mtl), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", mtlPath, err)
	}
	return []string{objPath, mtlPath}, nil
}

func outputRenderText(cmd *cobra.Command, result RenderResult) error {
	w := cmd.OutOrStdout()

	name := result.Contract
	if result.Base != "" {
		name = fmt.Sprintf("%s (from %s)", result.Contract, result.Base)
	}
	fmt.Fprintf(w, "✓ %s: %d event(s) -> %d bytes\n", name, result.Events, result.Size)
	if result.Skipped > 0 {
		fmt.Fprintf(w, "  Skipped %d malformed record(s)\n", result.Skipped)
	}
	fmt.Fprintf(w, "  Digest: %s\n", result.Digest)
	for _, f := range result.Files {
		fmt.Fprintf(w, "  Wrote: %s\n", f)
	}
	return nil
}

func derivedNames(registry *projection.Registry) []string {
	var names []string
	for _, e := range registry.Entries() {
		if e.Derived() {
			names = append(names, e.Name)
		}
	}
	return names
}

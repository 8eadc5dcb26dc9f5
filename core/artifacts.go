package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parityci/dpc/internal/contract"
	"github.com/parityci/dpc/internal/imaging"
	"github.com/parityci/dpc/schema"
)

// File names inside the per-run artifact directory.
const (
	artifactRefImage    = "ref.png"
	artifactImplImage   = "impl.png"
	artifactHeatmap     = "heatmap.png"
	artifactRefElements = "elements_ref.json"
	artifactImplElems   = "elements_impl.json"
	artifactReport      = "report.json"
)

// writeCompareArtifacts persists the captured rasters, their normalized
// element lists, the dissimilarity heatmap, and the report itself into a
// timestamped directory under cfg.ArtifactDir. The artifact set is attached
// to the envelope before report.json is written, so the report on disk
// lists its own siblings.
func writeCompareArtifacts(cfg *contract.Config, out *schema.CompareOutput, ref, impl *schema.Snapshot) error {
	dir := filepath.Join(cfg.ArtifactDir, time.Now().Format("run-20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir %s: %w", dir, err)
	}

	set := &schema.ArtifactSet{Dir: dir}

	if ref.Img != nil {
		if err := imaging.SavePNG(filepath.Join(dir, artifactRefImage), ref.Img); err != nil {
			return err
		}
		set.RefImage = artifactRefImage
	}
	if impl.Img != nil {
		if err := imaging.SavePNG(filepath.Join(dir, artifactImplImage), impl.Img); err != nil {
			return err
		}
		set.ImplImage = artifactImplImage
	}

	if grid := ComputeDissimGrid(ref, impl, cfg.IgnoreRegions); grid != nil {
		hm := imaging.Heatmap(ref.Img, grid.Values, grid.W, grid.H, grid.Block)
		if err := imaging.SavePNG(filepath.Join(dir, artifactHeatmap), hm); err != nil {
			return err
		}
		set.Heatmap = artifactHeatmap
	}

	if err := writeJSONArtifact(filepath.Join(dir, artifactRefElements), ExtractElements(ref)); err != nil {
		return err
	}
	if err := writeJSONArtifact(filepath.Join(dir, artifactImplElems), ExtractElements(impl)); err != nil {
		return err
	}

	out.Artifacts = set
	return writeJSONArtifact(filepath.Join(dir, artifactReport), out)
}

func writeJSONArtifact(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

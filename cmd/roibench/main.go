// Command roibench compares two raw grayscale frame captures across the
// regions of a selection document, scoring every region with both
// comparator backends. It is the tuning harness for picking a region of
// interest and a similarity threshold before a full extraction run.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/weidix/subtitle-fast-sub001/internal/compare"
	"github.com/weidix/subtitle-fast-sub001/internal/selection"
	"github.com/weidix/subtitle-fast-sub001/internal/video"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "roibench:", err)
		os.Exit(1)
	}
}

func run() error {
	selectionPath := flag.String("selection", "", "path to the region-selection YAML document (required)")
	flag.Parse()

	if *selectionPath == "" || flag.NArg() != 2 {
		return fmt.Errorf("usage: roibench -selection regions.yaml frame_a.y frame_b.y")
	}

	doc, err := selection.Load(*selectionPath)
	if err != nil {
		return err
	}

	frameA, err := loadRawFrame(flag.Arg(0), doc)
	if err != nil {
		return err
	}
	frameB, err := loadRawFrame(flag.Arg(1), doc)
	if err != nil {
		return err
	}

	backends := []compare.Backend{compare.BitsetCover, compare.SparseChamfer}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Region", "Backend", "Similarity", "Same", "Detail"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})

	for _, named := range doc.Regions {
		for _, backend := range backends {
			comparator := compare.New(compare.Config{
				Backend:    backend,
				Preprocess: doc.LumaBand,
			})

			blobA, err := comparator.Extract(frameA, named.Region)
			if err != nil {
				return fmt.Errorf("region %q: %w", named.Name, err)
			}
			blobB, err := comparator.Extract(frameB, named.Region)
			if err != nil {
				return fmt.Errorf("region %q: %w", named.Name, err)
			}

			if blobA == nil || blobB == nil {
				tw.AppendRow(table.Row{named.Name, backend.String(), "-", "-", "no content"})
				continue
			}

			report := comparator.Compare(blobA, blobB)
			tw.AppendRow(table.Row{
				named.Name,
				backend.String(),
				fmt.Sprintf("%.4f", report.Similarity),
				report.SameSegment,
				detailSummary(backend, report),
			})
		}
	}

	tw.Render()
	return nil
}

// loadRawFrame reads a packed Y-plane capture whose size must match the
// document's frame geometry exactly.
func loadRawFrame(path string, doc *selection.Document) (*video.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) != doc.FrameSize() {
		return nil, fmt.Errorf("%s: %d bytes, want %d for %dx%d",
			path, len(data), doc.FrameSize(), doc.FrameWidth, doc.FrameHeight)
	}
	return &video.Frame{
		Pixels: data,
		Width:  doc.FrameWidth,
		Height: doc.FrameHeight,
		Stride: doc.FrameWidth,
	}, nil
}

func detailSummary(backend compare.Backend, report compare.Report) string {
	switch backend {
	case compare.SparseChamfer:
		return fmt.Sprintf("dist=%.4f pts=%.0f/%.0f",
			report.Details["normalized_distance"],
			report.Details["points_a"], report.Details["points_b"])
	default:
		return fmt.Sprintf("cells=%.0f/%.0f inter=%.0f union=%.0f",
			report.Details["cells_a"], report.Details["cells_b"],
			report.Details["intersection"], report.Details["union"])
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/ocr-session/internal/imaging"
)

type recognizeFlags struct {
	region     string
	quadrant   string
	trim       bool
	scale      float64
	grayscale  bool
	contrast   float64
	autoInvert bool
	threshold  int
	jsonOut    bool
}

func (a *app) recognizeCmd() *cobra.Command {
	var f recognizeFlags

	cmd := &cobra.Command{
		Use:   "recognize <source>",
		Short: "Recognize text in one image and print it",
		Long: `Create a worker for the configured languages, recognize text in the image,
print the result and release the worker.

The source may be a file path, an http(s) URL, an s3://bucket/key object,
a data URI or a base64 encoded image. S3 objects use the standard AWS
credential chain (AWS_PROFILE, AWS_REGION, AWS_ENDPOINT_URL_S3, ...).`,
		Example: `  ocr-session recognize scan.png
  ocr-session recognize --lang tha+eng --scale 2 --grayscale receipt.jpg
  ocr-session recognize --quadrant top-half --json https://example.com/sign.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pre, err := f.preprocess()
			if err != nil {
				return err
			}
			return a.runRecognize(cmd, imaging.ParseSource(args[0]), pre, f.jsonOut)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.region, "region", "", "recognize only x1,y1,x2,y2")
	fl.StringVar(&f.quadrant, "quadrant", "", "recognize only a named area ("+strings.Join(imaging.Quadrants, ", ")+")")
	fl.BoolVar(&f.trim, "trim", false, "crop away blank margins first")
	fl.Float64Var(&f.scale, "scale", 0, "resize factor applied before recognition")
	fl.BoolVar(&f.grayscale, "grayscale", false, "convert to grayscale first")
	fl.Float64Var(&f.contrast, "contrast", 0, "contrast adjustment from -1 to 1")
	fl.BoolVar(&f.autoInvert, "auto-invert", false, "invert light-on-dark images")
	fl.IntVar(&f.threshold, "threshold", 0, "binarize at this level (1-255)")
	fl.BoolVar(&f.jsonOut, "json", false, "print the full result as JSON")
	return cmd
}

func (f *recognizeFlags) preprocess() (imaging.Preprocess, error) {
	pre := imaging.Preprocess{
		Quadrant:   f.quadrant,
		Trim:       f.trim,
		Scale:      f.scale,
		Grayscale:  f.grayscale,
		Contrast:   f.contrast,
		AutoInvert: f.autoInvert,
		Threshold:  f.threshold,
	}
	if f.region != "" {
		r, err := parseRegion(f.region)
		if err != nil {
			return pre, err
		}
		pre.Region = &r
	}
	return pre, pre.Validate()
}

// parseRegion parses "x1,y1,x2,y2".
func parseRegion(s string) (imaging.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imaging.Region{}, fmt.Errorf("region must be x1,y1,x2,y2, got %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return imaging.Region{}, fmt.Errorf("invalid region coordinate %q: %w", p, err)
		}
		v[i] = n
	}
	return imaging.Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

func (a *app) runRecognize(cmd *cobra.Command, src imaging.Source, pre imaging.Preprocess, jsonOut bool) error {
	ctx := cmd.Context()

	sess, err := a.newSession()
	if err != nil {
		return err
	}
	if err := sess.Initialize(ctx, ""); err != nil {
		return fmt.Errorf("failed to initialize OCR: %w", err)
	}
	defer func() {
		if err := sess.Terminate(context.Background()); err != nil {
			log.Printf("Failed to terminate OCR worker: %v", err)
		}
	}()

	out, err := sess.RecognizeWith(ctx, src, pre)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOut {
		result := map[string]interface{}{
			"ok":          out.OK(),
			"text":        out.Text,
			"confidence":  out.Confidence,
			"source":      out.Source,
			"languages":   out.Languages,
			"duration_ms": out.Duration.Milliseconds(),
			"regions":     out.Regions,
		}
		if out.Err != nil {
			result["error"] = out.Err.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if out.OK() {
		fmt.Fprintln(w, strings.TrimRight(out.Text, "\n"))
		fmt.Fprintf(cmd.ErrOrStderr(), "confidence: %s (%s, %dms)\n",
			confidenceLabel(out.Confidence), out.Languages, out.Duration.Milliseconds())
	}

	if !out.OK() {
		return fmt.Errorf("recognition failed: %w", out.Err)
	}
	return nil
}

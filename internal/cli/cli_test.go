package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	imgcolor "image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/ironsheep/ocr-session/internal/imaging"
	"github.com/ironsheep/ocr-session/internal/ocr"
)

type fakeEngine struct {
	err       error
	languages [][]string
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) NewWorker(ctx context.Context, languages []string) (ocr.Worker, error) {
	e.languages = append(e.languages, languages)
	return &fakeWorker{engine: e, languages: languages}, nil
}

type fakeWorker struct {
	engine    *fakeEngine
	languages []string
}

func (w *fakeWorker) Languages() []string { return w.languages }

func (w *fakeWorker) Recognize(ctx context.Context, image []byte) (*ocr.Result, error) {
	if w.engine.err != nil {
		return nil, w.engine.err
	}
	return &ocr.Result{Text: "HELLO\n", Confidence: 87}, nil
}

func (w *fakeWorker) Terminate() error { return nil }

// run executes the command line with args against engine and returns
// stdout and stderr.
func run(t *testing.T, engine *fakeEngine, env map[string]string, stdin string, args ...string) (*app, string, string, error) {
	t.Helper()
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
		color.NoColor = noColor
	})

	a := newApp(BuildInfo{Version: "1.2.3", BuildTime: "today", GitCommit: "abc123"})
	a.newEngine = func(string) ocr.Engine { return engine }
	a.getenv = func(k string) string { return env[k] }

	cmd := a.rootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return a, stdout.String(), stderr.String(), err
}

func writePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, imgcolor.White)
		}
	}
	path := filepath.Join(t.TempDir(), "text.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func TestRecognize(t *testing.T) {
	engine := &fakeEngine{}
	path := writePNG(t)

	_, stdout, stderr, err := run(t, engine, nil, "", "recognize", "--lang", "deu+fra", path)
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if stdout != "HELLO\n" {
		t.Errorf("stdout: got %q, want %q", stdout, "HELLO\n")
	}
	if !strings.Contains(stderr, "confidence: 87.00") {
		t.Errorf("stderr should report confidence, got %q", stderr)
	}
	if len(engine.languages) != 1 || strings.Join(engine.languages[0], "+") != "deu+fra" {
		t.Errorf("worker languages: got %v, want [[deu fra]]", engine.languages)
	}
}

func TestRecognize_JSON(t *testing.T) {
	path := writePNG(t)

	_, stdout, _, err := run(t, &fakeEngine{}, nil, "", "recognize", "--json", "--scale", "2", path)
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}

	var res struct {
		OK         bool    `json:"ok"`
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
		Source     string  `json:"source"`
		Languages  string  `json:"languages"`
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout)
	}
	if !res.OK || res.Confidence != 87 || res.Source != "file" {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Languages != "tha+eng" {
		t.Errorf("Languages: got %q, want tha+eng", res.Languages)
	}
}

func TestRecognize_Failure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("engine exploded")}
	path := writePNG(t)

	for _, mode := range []string{"silent", "return"} {
		t.Run(mode, func(t *testing.T) {
			_, stdout, _, err := run(t, engine, nil, "", "recognize", "--failure-mode", mode, path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), "engine exploded") {
				t.Errorf("error should carry the cause, got %v", err)
			}
			if stdout != "" {
				t.Errorf("nothing should be printed on failure, got %q", stdout)
			}
		})
	}
}

func TestRecognize_InvalidPreprocess(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad region", []string{"--region", "1,2,3"}},
		{"non-numeric region", []string{"--region", "a,b,c,d"}},
		{"region and quadrant", []string{"--region", "0,0,5,5", "--quadrant", "center"}},
		{"unknown quadrant", []string{"--quadrant", "somewhere"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{}
			args := append([]string{"recognize"}, tt.args...)
			args = append(args, "image.png")
			if _, _, _, err := run(t, engine, nil, "", args...); err == nil {
				t.Fatal("expected an error")
			}
			if len(engine.languages) != 0 {
				t.Error("no worker should be created for invalid options")
			}
		})
	}
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("10, 20,30,40")
	if err != nil {
		t.Fatalf("parseRegion failed: %v", err)
	}
	want := imaging.Region{X1: 10, Y1: 20, X2: 30, Y2: 40}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestConfigPrecedence(t *testing.T) {
	env := map[string]string{
		"OCR_SESSION_OVERLAP":       "reject",
		"OCR_SESSION_LANGUAGES":     "jpn",
		"OCR_SESSION_FETCH_TIMEOUT": "5s",
	}

	a, _, _, err := run(t, &fakeEngine{}, env, "", "version", "--overlap", "serialize")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if a.cfg.Overlap != "serialize" {
		t.Errorf("flag should override env: got %q", a.cfg.Overlap)
	}
	if a.cfg.Languages != "jpn" {
		t.Errorf("env should override default: got %q", a.cfg.Languages)
	}
	if a.cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout: got %v, want 5s", a.cfg.FetchTimeout)
	}
}

func TestInvalidConfig(t *testing.T) {
	_, _, _, err := run(t, &fakeEngine{}, nil, "", "version", "--failure-mode", "loud")
	if err == nil {
		t.Fatal("expected an error for an unknown failure mode")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfidenceLabel(t *testing.T) {
	noColor := color.NoColor
	t.Cleanup(func() { color.NoColor = noColor })

	color.NoColor = true
	if got := confidenceLabel(87); got != "87.00" {
		t.Errorf("plain label: got %q", got)
	}

	color.NoColor = false
	tests := []struct {
		confidence float64
		code       string
	}{
		{92, "\x1b[32m"},
		{65, "\x1b[33m"},
		{12.5, "\x1b[31m"},
	}
	for _, tt := range tests {
		got := confidenceLabel(tt.confidence)
		if !strings.HasPrefix(got, tt.code) {
			t.Errorf("confidenceLabel(%v) = %q, want prefix %q", tt.confidence, got, tt.code)
		}
	}
}

func TestServe_JWTRequiresHTTP(t *testing.T) {
	_, _, _, err := run(t, &fakeEngine{}, nil, "", "serve", "--jwt-secret", "s3cret")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("a JWT secret without --http should be rejected, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	_, stdout, _, err := run(t, &fakeEngine{}, nil, "", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"ocr-session 1.2.3", "abc123", "Backend:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("version output missing %q:\n%s", want, stdout)
		}
	}
}

func TestServeIsDefault(t *testing.T) {
	stdin := `{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"

	for _, args := range [][]string{nil, {"serve"}} {
		_, stdout, _, err := run(t, &fakeEngine{}, nil, stdin, args...)
		if err != nil {
			t.Fatalf("serve %v failed: %v", args, err)
		}
		if !strings.Contains(stdout, `"id":7`) {
			t.Errorf("serve %v: response missing, got %q", args, stdout)
		}
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/proctex/pkg/config"
	"github.com/chazu/proctex/pkg/procedure"
)

// testConfig keeps previews small.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Render.Width = 8
	cfg.Render.Height = 8
	cfg.Render.Workers = 2
	return cfg
}

func outputStats(t *testing.T, r EvalResult, name string) OutputStats {
	t.Helper()
	for _, s := range r.Outputs {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no stats for output %q", name)
	return OutputStats{}
}

func requireClean(t *testing.T, r EvalResult) {
	t.Helper()
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
}

// TestE2EExamples exercises the full pipeline for every bundled script:
// Lisp source → engine → procedure → validation → preview.
func TestE2EExamples(t *testing.T) {
	paths, err := filepath.Glob("examples/*.proc")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatal("no example scripts found")
	}

	app := NewApp(testConfig())
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			source, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read %s: %v", path, err)
			}
			result := app.Evaluate(string(source))
			requireClean(t, result)

			if len(result.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", result.Warnings)
			}
			if result.Image == nil || result.Procedure == nil {
				t.Fatal("expected a procedure and a preview")
			}
			if len(result.Outputs) != 11 {
				t.Errorf("expected 11 output summaries, got %d", len(result.Outputs))
			}
			if result.Nodes <= 11 || result.Links == 0 {
				t.Errorf("expected a populated procedure, got %d nodes and %d links", result.Nodes, result.Links)
			}
		})
	}
}

func TestE2EMarbleVaries(t *testing.T) {
	source, err := os.ReadFile("examples/marble.proc")
	if err != nil {
		t.Fatal(err)
	}
	result := NewApp(testConfig()).Evaluate(string(source))
	requireClean(t, result)

	d := outputStats(t, result, "Diffuse")
	if d.Max <= d.Min {
		t.Errorf("diffuse should vary over the preview, got min=%g max=%g", d.Min, d.Max)
	}
	if s := outputStats(t, result, "Shininess"); s.Min != 60 || s.Max != 60 {
		t.Errorf("shininess = %+v, want constant 60", s)
	}
}

func TestE2EParameterDefaults(t *testing.T) {
	source, err := os.ReadFile("examples/parameters.proc")
	if err != nil {
		t.Fatal(err)
	}
	result := NewApp(testConfig()).Evaluate(string(source))
	requireClean(t, result)

	// Saturation of (0.8, 0.4, 0.1).
	r := outputStats(t, result, "Roughness")
	if r.Min < 0.874 || r.Max > 0.876 {
		t.Errorf("roughness = %+v, want 0.875", r)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	result := NewApp(testConfig()).Evaluate("")
	requireClean(t, result)

	if result.Nodes != 11 || result.Links != 0 {
		t.Errorf("expected bare outputs, got %d nodes and %d links", result.Nodes, result.Links)
	}
	if d := outputStats(t, result, "Diffuse"); d.Min != 1 || d.Max != 1 {
		t.Errorf("unlinked diffuse should be white, got %+v", d)
	}
	if e := outputStats(t, result, "Emissive"); e.Max != 0 {
		t.Errorf("unlinked emissive should be black, got %+v", e)
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	result := NewApp(testConfig()).Evaluate(`(output "Diffuse"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if result.Image != nil || result.Procedure != nil {
		t.Error("expected no procedure or preview on error")
	}
}

func TestE2ESavedProcedure(t *testing.T) {
	source, err := os.ReadFile("examples/carved.proc")
	if err != nil {
		t.Fatal(err)
	}
	app := NewApp(testConfig())
	first := app.Evaluate(string(source))
	requireClean(t, first)

	var buf bytes.Buffer
	if err := procedure.Encode(&buf, first.Procedure); err != nil {
		t.Fatalf("encode: %v", err)
	}
	p, err := procedure.Decode(&buf, app.registry)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second := app.EvaluateProcedure(p)
	requireClean(t, second)

	if first.Nodes != second.Nodes || first.Links != second.Links {
		t.Errorf("shape changed: %d/%d nodes, %d/%d links", first.Nodes, second.Nodes, first.Links, second.Links)
	}
	for i := range first.Outputs {
		if first.Outputs[i] != second.Outputs[i] {
			t.Errorf("output %s: %+v != %+v", first.Outputs[i].Name, first.Outputs[i], second.Outputs[i])
		}
	}
}

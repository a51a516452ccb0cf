package jactl

import "testing"

func TestLoadOptionsFromYAML(t *testing.T) {
	doc := []byte(`
replMode: true
debugLevel: 2
minScale: 20
evaluateConstExprs: true
printLoop: true
`)
	o, err := LoadOptionsFromYAML(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.ReplMode {
		t.Error("expected ReplMode = true")
	}
	if o.DebugLevel != 2 {
		t.Errorf("DebugLevel = %d, want 2", o.DebugLevel)
	}
	if o.MinScale != 20 {
		t.Errorf("MinScale = %d, want 20", o.MinScale)
	}
	if !o.EvaluateConstExprs {
		t.Error("expected EvaluateConstExprs = true")
	}
	if !o.PrintLoop {
		t.Error("expected PrintLoop = true")
	}
	if o.NonPrintLoop {
		t.Error("expected NonPrintLoop = false (not present in the document)")
	}
}

func TestLoadOptionsFromYAMLDefaultsMinScale(t *testing.T) {
	o, err := LoadOptionsFromYAML([]byte(`replMode: false`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.MinScale != 10 {
		t.Errorf("MinScale = %d, want default 10 when absent from the document", o.MinScale)
	}
}

func TestLoadOptionsFromYAMLInvalidDocument(t *testing.T) {
	_, err := LoadOptionsFromYAML([]byte("not: valid: yaml: [["))
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

package skills

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestFile(t *testing.T) {
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "summarize-report")
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `---
name: summarize-report
description: Summarizes long analysis reports.
metadata:
  author: example-org
---

Use this skill for long outputs.
`
	path := filepath.Join(skillDir, "SKILL.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	manifest, err := LoadManifestFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if manifest.Name != "summarize-report" {
		t.Fatalf("unexpected name: %s", manifest.Name)
	}
	if manifest.Metadata["author"] != "example-org" {
		t.Fatalf("unexpected metadata: %v", manifest.Metadata)
	}
}

func TestLoadManifestDir(t *testing.T) {
	dir := t.TempDir()
	skillDir := filepath.Join(dir, "code_review")
	if err := os.MkdirAll(skillDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := `---
name: code_review
description: Review code changes.
---
`
	if err := os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	manifests, err := LoadManifestDir(dir)
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(manifests))
	}

	r := NewRegistry(nil)
	ApplyManifests(r, manifests)
	if got := r.Describe("code_review"); got != "Review code changes." {
		t.Fatalf("expected manifest description, got %q", got)
	}
}

func TestLoadManifestRejectsMissingName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SKILL.md")
	content := `---
description: Missing name.
---
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadManifestFile(path); err == nil {
		t.Fatal("expected validation error")
	}
}

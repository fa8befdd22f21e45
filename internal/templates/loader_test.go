package templates

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	tmpl := Default()
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("default template invalid: %v", err)
	}
	if len(tmpl.AddressLines) != 2 {
		t.Errorf("expected 2 address lines, got %d", len(tmpl.AddressLines))
	}
	if len(tmpl.TitleLines) != 2 {
		t.Errorf("expected 2 title lines, got %d", len(tmpl.TitleLines))
	}
}

func TestLoadFromFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.yaml")

	yaml := "college_name: \"TEST COLLEGE OF ENGINEERING\"\nlogo_path: \"\"\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	tmpl, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if tmpl.CollegeName != "TEST COLLEGE OF ENGINEERING" {
		t.Errorf("college name not overridden, got '%s'", tmpl.CollegeName)
	}
	if tmpl.Declaration == "" {
		t.Error("expected declaration filled from defaults")
	}
	if tmpl.LogoPath != "" {
		t.Errorf("expected logo path cleared, got '%s'", tmpl.LogoPath)
	}
}

func TestLoadProjectTemplate(t *testing.T) {
	path := filepath.Join("..", "..", "templates", "form.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("templates directory not found, skipping")
	}

	tmpl, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if err := tmpl.Validate(); err != nil {
		t.Errorf("project template invalid: %v", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsEmptyDeclaration(t *testing.T) {
	tmpl := Default()
	tmpl.Declaration = ""
	if err := tmpl.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

package sdk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kderr/varlint/internal/variant"
)

func platformVariant(p *variant.Platform) variant.Variant {
	return variant.Variant{
		Name:        "release",
		SourceRoots: []string{"/src"},
		OutputDirs:  []string{"/out"},
		CompileTask: "compileRelease",
		Platform:    p,
	}
}

func TestLocateExplicitArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "android.jar")
	if err := os.WriteFile(archive, []byte("jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Locate(platformVariant(&variant.Platform{BaseArchive: archive}))
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != archive {
		t.Fatalf("expected %s, got %s", archive, got)
	}
}

func TestLocateProbesHome(t *testing.T) {
	home := t.TempDir()
	archive := filepath.Join(home, "lib", "android.jar")
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(archive, []byte("jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Locate(platformVariant(&variant.Platform{Home: home}))
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if got != archive {
		t.Fatalf("expected %s, got %s", archive, got)
	}
}

func TestLocateMissingArchiveIsFatal(t *testing.T) {
	if _, err := Locate(platformVariant(&variant.Platform{Home: t.TempDir()})); err == nil {
		t.Fatal("expected error for empty SDK home")
	}
	missing := filepath.Join(t.TempDir(), "nope.jar")
	if _, err := Locate(platformVariant(&variant.Platform{BaseArchive: missing})); err == nil {
		t.Fatal("expected error for missing explicit archive")
	}
}

func TestLocateRejectsNonPlatformVariant(t *testing.T) {
	if _, err := Locate(platformVariant(nil)); err == nil {
		t.Fatal("expected error for non-platform variant")
	}
}

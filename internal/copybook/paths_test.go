// SPDX-License-Identifier: MPL-2.0

package copybook

import (
	"path/filepath"
	"testing"
)

func TestCopybookPath(t *testing.T) {
	t.Parallel()

	got := CopybookPath("profile", "dataset", "copybook", "downloadFolder")
	want := filepath.Join("downloadFolder", "zowe", "copybooks", "profile", "dataset", "copybook")
	if got != want {
		t.Errorf("CopybookPath() = %q, want %q", got, want)
	}
}

func TestDatasetPath(t *testing.T) {
	t.Parallel()

	got := DatasetPath("profile", "dataset", "downloadFolder")
	want := filepath.Join("downloadFolder", "zowe", "copybooks", "profile", "dataset")
	if got != want {
		t.Errorf("DatasetPath() = %q, want %q", got, want)
	}
}

func TestCopybookPath_IsInsideDatasetPath(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "ws")
	ds := DatasetPath("prod", "HLQ.COPYLIB", root)
	cb := CopybookPath("prod", "HLQ.COPYLIB", "CUSTREC", root)

	if filepath.Dir(cb) != ds {
		t.Errorf("copybook %q is not directly inside dataset dir %q", cb, ds)
	}
	if !filepath.IsAbs(cb) {
		t.Errorf("copybook path %q should stay absolute for an absolute root", cb)
	}
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func allIds() []Id {
	return []Id{
		ConfigLoadFailedId,
		ProfilesInvalidId,
		NoProfileId,
		NoDatasetPathsId,
		NoWorkspaceId,
		ListingFailedId,
		FetchFailedId,
		HostKeyUnknownId,
		PartialResolutionId,
		ProgramNotFoundId,
	}
}

func TestCatalog_Complete(t *testing.T) {
	t.Parallel()

	seen := make(map[Id]bool)
	for _, id := range allIds() {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true

		i := Get(id)
		if i == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if i.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, i.Id())
		}
		if !strings.HasPrefix(strings.TrimSpace(string(i.MarkdownMsg())), "# ") {
			t.Errorf("issue %d should start with a heading", id)
		}
	}
	if ConfigLoadFailedId != 1 {
		t.Errorf("ConfigLoadFailedId = %d, want 1", ConfigLoadFailedId)
	}
	if Get(0) != nil || Get(Id(len(allIds())+1)) != nil {
		t.Error("Get should return nil for unknown ids")
	}
}

func TestValues_Ordered(t *testing.T) {
	t.Parallel()

	vals := Values()
	if len(vals) != len(allIds()) {
		t.Fatalf("Values() returned %d issues, want %d", len(vals), len(allIds()))
	}
	for i, v := range vals {
		if v.Id() != allIds()[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, v.Id(), allIds()[i])
		}
	}
}

func TestIssue_LinksAreCopies(t *testing.T) {
	t.Parallel()

	i := &Issue{id: 99, docLinks: []HttpLink{"https://a"}, extLinks: []HttpLink{"https://b"}}
	docs := i.DocLinks()
	docs[0] = "changed"
	if i.DocLinks()[0] != "https://a" {
		t.Error("DocLinks() should return a copy")
	}
	ext := i.ExtLinks()
	ext[0] = "changed"
	if i.ExtLinks()[0] != "https://b" {
		t.Error("ExtLinks() should return a copy")
	}
}

// Render tests swap the package renderer, so they do not run in parallel.

func TestIssue_Render(t *testing.T) {
	originalRender := render
	t.Cleanup(func() { render = originalRender })

	var gotStyle string
	render = func(in, stylePath string) (string, error) {
		gotStyle = stylePath
		return in, nil
	}

	out, err := Get(NoDatasetPathsId).Render("dark")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if gotStyle != "dark" {
		t.Errorf("style = %q, want dark", gotStyle)
	}
	if !strings.Contains(out, "dataset_paths") {
		t.Error("rendered output should mention dataset_paths")
	}
	if strings.Contains(out, "See also") {
		t.Error("issue without links should not have a See also section")
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	originalRender := render
	t.Cleanup(func() { render = originalRender })
	render = func(in, _ string) (string, error) { return in, nil }

	i := &Issue{
		id:       99,
		mdMsg:    "# Test",
		docLinks: []HttpLink{"https://docs.example.com/a"},
		extLinks: []HttpLink{"https://example.com/b"},
	}
	out, err := i.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	for _, want := range []string{"## See also", "- <https://docs.example.com/a>", "- <https://example.com/b>"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q:\n%s", want, out)
		}
	}
}

func TestIssue_Render_Glamour(t *testing.T) {
	out, err := Get(NoProfileId).Render("notty")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "No connection profile is configured") {
		t.Errorf("rendered output missing heading text:\n%s", out)
	}
}

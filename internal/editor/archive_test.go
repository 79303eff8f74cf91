package editor

import (
	"strings"
	"testing"

	"github.com/starford/raido/internal/org"
)

const archiveSrc = `#+CATEGORY: projects
* Project
** DONE Finish report
report body
** Other task
`

func TestArchive(t *testing.T) {
	pos := posOf(t, archiveSrc, "** DONE Finish report")
	newSrc, newArch, err := Archive(org.DefaultConfig(), archiveSrc, pos, "work.org", "", testNow)
	if err != nil {
		t.Fatal(err)
	}

	want := "#+CATEGORY: projects\n* Project\n** Other task\n"
	if newSrc != want {
		t.Errorf("source = %q, want %q", newSrc, want)
	}

	if !strings.HasPrefix(newArch, "* DONE Finish report\n") {
		t.Errorf("archived root not renumbered to level 1: %q", newArch)
	}
	for _, line := range []string{
		":ARCHIVE_TIME: " + testStamp,
		":ARCHIVE_FILE: work.org",
		":ARCHIVE_OLPATH: Project",
		":ARCHIVE_CATEGORY: projects",
		":ARCHIVE_TODO: DONE",
	} {
		if !strings.Contains(newArch, line) {
			t.Errorf("archive missing %q:\n%s", line, newArch)
		}
	}
	if !strings.Contains(newArch, "report body\n") {
		t.Errorf("archive lost body: %q", newArch)
	}
}

func TestArchive_AppendsToExistingContent(t *testing.T) {
	existing := "* DONE Earlier entry\n"
	_, newArch, err := Archive(org.DefaultConfig(), "* DONE Task\n", 0, "a.org", existing, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(newArch, existing) {
		t.Errorf("existing archive content lost: %q", newArch)
	}
	if !strings.Contains(newArch, "* DONE Task\n") {
		t.Errorf("entry not appended: %q", newArch)
	}
}

func TestArchive_NestedOutlinePath(t *testing.T) {
	content := "* A\n** B\n*** DONE C\n"
	_, newArch, err := Archive(org.DefaultConfig(), content, posOf(t, content, "*** DONE C"), "a.org", "", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(newArch, ":ARCHIVE_OLPATH: A/B") {
		t.Errorf("outline path wrong: %q", newArch)
	}
}

func TestArchive_TopLevelOmitsOlpath(t *testing.T) {
	_, newArch, err := Archive(org.DefaultConfig(), "* DONE Task\n", 0, "a.org", "", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(newArch, "ARCHIVE_OLPATH") {
		t.Errorf("top-level entry must not carry an outline path: %q", newArch)
	}
}

func TestArchive_NoKeywordOmitsTodo(t *testing.T) {
	_, newArch, err := Archive(org.DefaultConfig(), "* Plain note\n", 0, "a.org", "", testNow)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(newArch, "ARCHIVE_TODO") {
		t.Errorf("keywordless entry must not carry ARCHIVE_TODO: %q", newArch)
	}
}

func TestArchiveTarget(t *testing.T) {
	tests := []struct {
		location string
		file     string
		heading  string
	}{
		{"", "notes.org_archive", ""},
		{"%s_archive::", "notes.org_archive", ""},
		{"archive/old.org::* Archived", "archive/old.org", "Archived"},
		{"::* Done", "notes.org", "Done"},
	}
	for _, tt := range tests {
		file, heading := ArchiveTarget(tt.location, "notes.org")
		if file != tt.file || heading != tt.heading {
			t.Errorf("ArchiveTarget(%q) = %q, %q, want %q, %q",
				tt.location, file, heading, tt.file, tt.heading)
		}
	}
}

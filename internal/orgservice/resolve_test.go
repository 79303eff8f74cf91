package orgservice

import (
	"context"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/org"
)

func firstLink(t *testing.T, content string) org.Link {
	t.Helper()
	links := org.ParseLinks(content)
	if len(links) == 0 {
		t.Fatalf("no link in %q", content)
	}
	return links[0]
}

func TestResolveLink_ID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, "target.org", "* Node\n:PROPERTIES:\n:ID: node-1\n:END:\n")
	mustCreate(t, s, "source.org", "see [[id:node-1]]\n")

	got, err := s.ResolveLink(ctx, "source.org", firstLink(t, "[[id:node-1]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "target.org" || got.NodeID != "node-1" || got.Pos != 0 {
		t.Errorf("target = %+v", got)
	}
}

func TestResolveLink_IDIndexless(t *testing.T) {
	s := newIndexlessService(t)
	ctx := context.Background()
	if err := s.store.Write("target.org", []byte("* Node\n:PROPERTIES:\n:ID: node-1\n:END:\n")); err != nil {
		t.Fatal(err)
	}

	got, err := s.ResolveLink(ctx, "any.org", firstLink(t, "[[id:node-1]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "target.org" || got.NodeID != "node-1" {
		t.Errorf("target = %+v", got)
	}
}

func TestResolveLink_FileMissingResolvesFileOnly(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	got, err := s.ResolveLink(ctx, "a.org", firstLink(t, "[[file:./gone.org::#target-id]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "gone.org" {
		t.Errorf("path = %q, want gone.org", got.Path)
	}
	if got.Pos != 0 || got.NodeID != "" {
		t.Errorf("target = %+v, want file only", got)
	}
}

func TestResolveLink_IDMissing(t *testing.T) {
	s := newTestService(t)
	_, err := s.ResolveLink(context.Background(), "a.org", firstLink(t, "[[id:ghost]]"))
	if !apperr.Is(err, apperr.KindHeadlineNotFound) {
		t.Errorf("err = %v, want headline_not_found", err)
	}
}

func TestResolveLink_FileRelative(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, "sub/b.org", "* Hello\n")
	mustCreate(t, s, "sub/a.org", "link [[file:b.org]]\n")

	got, err := s.ResolveLink(ctx, "sub/a.org", firstLink(t, "[[file:b.org]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "sub/b.org" {
		t.Errorf("path = %q, want sub/b.org", got.Path)
	}
}

func TestResolveLink_FileWithCustomID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	content := "* Intro\n* Section\n:PROPERTIES:\n:CUSTOM_ID: sec\n:END:\n"
	mustCreate(t, s, "b.org", content)

	got, err := s.ResolveLink(ctx, "a.org", firstLink(t, "[[file:b.org::#sec]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "b.org" || got.Pos != 8 {
		t.Errorf("target = %+v, want pos of Section headline", got)
	}
}

func TestResolveLink_FileWithHeadlineSearch(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, "b.org", "* Intro\n* Section\n")

	got, err := s.ResolveLink(ctx, "a.org", firstLink(t, "[[file:b.org::*Section]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Pos != 8 {
		t.Errorf("pos = %d, want 8", got.Pos)
	}
}

func TestResolveLink_Fuzzy(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, "a.org", "* Intro\n* Some headline\nsee [[Some headline]]\n")

	got, err := s.ResolveLink(ctx, "a.org", firstLink(t, "[[Some headline]]"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "a.org" || got.Pos != 8 {
		t.Errorf("target = %+v", got)
	}
}

func TestResolveLink_ExternalType(t *testing.T) {
	s := newTestService(t)
	_, err := s.ResolveLink(context.Background(), "a.org", firstLink(t, "[[https://example.com][site]]"))
	if !apperr.Is(err, apperr.KindInvalidArgs) {
		t.Errorf("err = %v, want invalid_args", err)
	}
}

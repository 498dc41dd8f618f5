package toc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild(t *testing.T) {
	md := "# [My Page](https://www.notion.so/abc123)\n\n" +
		"Intro.\n\n" +
		"## Getting Started\n\n" +
		"### **Install** Steps\n\n" +
		"#### Deep Dive\n\n" +
		"## Getting Started\n"

	want := "- [My Page](#my-page)\n" +
		"    - [Getting Started](#getting-started)\n" +
		"        - [Install** Steps](#install**-steps)\n" +
		"            - [Deep Dive](#deep-dive)\n" +
		"    - [Getting Started](#getting-started)\n"
	if diff := cmp.Diff(want, Build(md)); diff != "" {
		t.Errorf("toc mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_NoHeadings(t *testing.T) {
	for _, md := range []string{"", "just text\n", "- item\n\n> quote\n", "  # indented is not a heading\n"} {
		if got := Build(md); got != "" {
			t.Errorf("Build(%q) = %q, want empty", md, got)
		}
		if got := Build(Build(md)); got != "" {
			t.Errorf("Build not idempotent on %q", md)
		}
	}
}

func TestHeadings(t *testing.T) {
	got := Headings("# **Bold Title**\ntext\n## Café Menu\n")
	want := []Heading{
		{Level: 1, Title: "**Bold Title**", Display: "Bold Title", Anchor: "bold-title"},
		{Level: 2, Title: "Café Menu", Display: "Café Menu", Anchor: "café-menu"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
}

package tui

import (
	"strings"
	"testing"
)

func TestHelpLine(t *testing.T) {
	got := HelpLine(DefaultKeyMap.Reload, DefaultKeyMap.Navigate)
	for _, want := range []string{"r: reload", "1-4: switch view"} {
		if !strings.Contains(got, want) {
			t.Errorf("HelpLine = %q, missing %q", got, want)
		}
	}
}

func TestRelabelLeavesDefaultUntouched(t *testing.T) {
	b := Relabel(DefaultKeyMap.Enter, "generate")
	if b.Help().Desc != "generate" {
		t.Errorf("relabelled desc = %q", b.Help().Desc)
	}
	if DefaultKeyMap.Enter.Help().Desc != "select" {
		t.Errorf("default desc changed to %q", DefaultKeyMap.Enter.Help().Desc)
	}
	if b.Help().Key != "enter" {
		t.Errorf("key = %q", b.Help().Key)
	}
}

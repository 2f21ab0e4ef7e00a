package main

import (
	"strings"
	"testing"
)

func TestInsertText(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"args joined", []string{"hello", "world"}, "", "hello world"},
		{"stdin", nil, "from stdin\n", "from stdin"},
		{"dash reads stdin", []string{"-"}, "piped", "piped"},
		{"multi-line stdin keeps inner breaks", nil, "a\nb\n", "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := insertText(tt.args, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

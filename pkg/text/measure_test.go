package text

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBasicMeasurer(t *testing.T) {
	m := BasicMeasurer{}

	tests := []struct {
		text string
		size float64
		want float64
	}{
		{"", 13, 0},
		{"abc", 13, 21},
		{"ab", 26, 28},
		{"hello ", 13, 42},
	}
	for _, tt := range tests {
		if got := m.Width(tt.text, tt.size); got != tt.want {
			t.Errorf("Width(%q, %v): expected %v, got %v", tt.text, tt.size, tt.want, got)
		}
	}

	if got := m.LineHeight(13); got != 13 {
		t.Errorf("expected line height 13, got %v", got)
	}
	if got := m.LineHeight(26); got != 26 {
		t.Errorf("expected line height 26, got %v", got)
	}
	if got := m.Ascent(13); got != 11 {
		t.Errorf("expected ascent 11, got %v", got)
	}
}

func TestNewFaceMeasurer_MissingFont(t *testing.T) {
	if _, err := NewFaceMeasurer("/nonexistent/font.ttf"); err == nil {
		t.Error("expected error for missing font file")
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"one", []string{"one"}},
		{"one two", []string{"one ", "two"}},
		{"  one \n\t two  ", []string{"one ", "two "}},
		{"a b c", []string{"a ", "b ", "c"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Words(tt.in)); diff != "" {
			t.Errorf("Words(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestRun(t *testing.T) {
	r := &Run{Text: "word", Size: 13, Measurer: BasicMeasurer{}}
	if got := r.PreferredWidth(); got != 28 {
		t.Errorf("expected width 28, got %v", got)
	}
	if got := r.PreferredHeight(100); got != 13 {
		t.Errorf("expected height 13, got %v", got)
	}
	if got := r.Baseline(); got != 11 {
		t.Errorf("expected baseline 11, got %v", got)
	}

	r.LineHeight = 21
	if got := r.PreferredHeight(100); got != 21 {
		t.Errorf("expected explicit line height 21, got %v", got)
	}
	if got := r.Baseline(); got != 15 {
		t.Errorf("expected baseline 15 with half-leading, got %v", got)
	}
}

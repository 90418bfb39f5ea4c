package parser

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "empty input",
			input: "",
			want:  []Block{},
		},
		{
			name:  "only delimiters",
			input: ">>>\n>>>\n   \n>>>",
			want:  []Block{},
		},
		{
			name:  "header on delimiter line",
			input: ">>> Einleitung\n>>> Text\nHallo\nWelt\n",
			want: []Block{
				{Index: 0, Header: "Einleitung"},
				{Index: 1, Header: "Text", Body: "Hallo\nWelt"},
			},
		},
		{
			name:  "header on line after delimiter",
			input: ">>>\nText\n\n  body  \n\n>>>\nCode\nx := 1",
			want: []Block{
				{Index: 0, Header: "Text", Body: "body"},
				{Index: 1, Header: "Code", Body: "x := 1"},
			},
		},
		{
			name:  "text before first delimiter",
			input: "Geltungsbereich\n>>> Text\nAlle Systeme",
			want: []Block{
				{Index: 0, Header: "Geltungsbereich"},
				{Index: 1, Header: "Text", Body: "Alle Systeme"},
			},
		},
		{
			name:  "CRLF line endings",
			input: ">>> Text\r\nzeile 1\r\nzeile 2\r\n>>> Code\rx",
			want: []Block{
				{Index: 0, Header: "Text", Body: "zeile 1\nzeile 2"},
				{Index: 1, Header: "Code", Body: "x"},
			},
		},
		{
			name:  "delimiter only at line start",
			input: ">>> Text\na >>> b",
			want: []Block{
				{Index: 0, Header: "Text", Body: "a >>> b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTokenize_PreservesOrder(t *testing.T) {
	t.Parallel()

	input := ">>> a\n>>> b\n>>> c\n>>> d"
	got := Tokenize(input)
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(got), len(want))
	}
	for i, b := range got {
		if b.Header != want[i] || b.Index != i {
			t.Errorf("block %d = {%d %q}, want {%d %q}", i, b.Index, b.Header, i, want[i])
		}
	}
}

func TestSectionText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"plantuml\nA -> B\n", "plantuml\nA -> B"},
		{"plantuml\r\nA -> B\r\n", "plantuml\nA -> B"},
		{"\n  eins\rzwei  \n\n", "eins\nzwei"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SectionText(tt.input); got != tt.want {
			t.Errorf("SectionText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	// A block body and the same text cleaned on its own agree.
	blocks := Tokenize(">>> Diagramm\r\nplantuml\r\nA -> B\r\n")
	if got := SectionText("plantuml\r\nA -> B\r\n"); got != blocks[0].Body {
		t.Errorf("SectionText() = %q, block body = %q", got, blocks[0].Body)
	}
}

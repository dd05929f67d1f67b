package naming

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		existing  []string
		style     Style
		want      string
	}{
		{"free", "main.c", []string{"a.c"}, CopyStyle, "main.c"},
		{"empty set", "main.c", nil, CopyStyle, "main.c"},
		{"upload copy", "a.c", []string{"a.c"}, CopyStyle, "a (1).c"},
		{"upload second copy", "a.c", []string{"a.c", "a (1).c"}, CopyStyle, "a (2).c"},
		{"fills lowest gap", "a.c", []string{"a.c", "a (2).c"}, CopyStyle, "a (1).c"},
		{"untitled", "untitled.c", []string{"untitled.c"}, UntitledStyle, "untitled-1.c"},
		{"untitled skips taken", "untitled.c", []string{"untitled.c", "untitled-1.c", "untitled-2.c"}, UntitledStyle, "untitled-3.c"},
		{"no extension", "Makefile", []string{"Makefile"}, CopyStyle, "Makefile (1)"},
		{"dotfile", ".c", []string{".c"}, CopyStyle, ".c (1)"},
		{"project", "My Project", []string{"My Project"}, ProjectStyle, "My Project (1)"},
		{"project with dot", "v1.2", []string{"v1.2"}, ProjectStyle, "v1.2 (1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.requested, tt.existing, tt.style)
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.requested, tt.existing, got, tt.want)
			}
			for _, e := range tt.existing {
				if got == e {
					t.Errorf("result %q collides with existing name", got)
				}
			}
		})
	}
}

func TestResolve_ManyCollisions(t *testing.T) {
	existing := []string{"a.c"}
	for i := 0; i < 50; i++ {
		next := Resolve("a.c", existing, CopyStyle)
		for _, e := range existing {
			if e == next {
				t.Fatalf("collision on iteration %d: %q", i, next)
			}
		}
		existing = append(existing, next)
	}
	if existing[50] != "a (50).c" {
		t.Errorf("last = %q, want %q", existing[50], "a (50).c")
	}
}

package workspace

import (
	"testing"
)

func sampleTree() *Node {
	root := NewRoot("9000")
	eng := root.Add(&Node{ID: "123", Name: "Engineering", Kind: KindSpace})
	sprint := eng.Add(&Node{ID: "456", Name: "Sprint 1", Kind: KindFolder})
	sprint.Add(&Node{ID: "789", Name: "Backlog", Kind: KindList})
	eng.Add(&Node{ID: "790", Name: "Inbox", Kind: KindList})
	root.Add(&Node{ID: "124", Name: "Marketing", Kind: KindSpace})
	return root
}

func TestRender(t *testing.T) {
	want := "Workspace (Workspace ID: 9000)\n" +
		"├── Engineering (Space ID: 123)\n" +
		"│   ├── Sprint 1 (Folder ID: 456)\n" +
		"│   │   └── Backlog (List ID: 789)\n" +
		"│   └── Inbox (List ID: 790)\n" +
		"└── Marketing (Space ID: 124)"

	if got := Render(sampleTree()); got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_EmptyWorkspace(t *testing.T) {
	got := Render(NewRoot("1"))
	if got != "Workspace (Workspace ID: 1)" {
		t.Errorf("Render() = %q", got)
	}
}

func TestFindByName(t *testing.T) {
	root := sampleTree()

	tests := []struct {
		name  string
		kind  Kind
		query string
		want  []string
	}{
		{name: "exact", kind: KindList, query: "Backlog", want: []string{"789"}},
		{name: "case insensitive", kind: KindSpace, query: "engineering", want: []string{"123"}},
		{name: "surrounding whitespace", kind: KindFolder, query: "  sprint 1 ", want: []string{"456"}},
		{name: "wrong kind", kind: KindFolder, query: "Backlog", want: nil},
		{name: "missing", kind: KindList, query: "Icebox", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := root.FindByName(tt.kind, tt.query)
			if len(matches) != len(tt.want) {
				t.Fatalf("FindByName(%s, %q) returned %d matches, want %d", tt.kind, tt.query, len(matches), len(tt.want))
			}
			for i, m := range matches {
				if m.Node.ID != tt.want[i] {
					t.Errorf("match[%d].ID = %s, want %s", i, m.Node.ID, tt.want[i])
				}
			}
		})
	}
}

func TestMatchPath(t *testing.T) {
	matches := sampleTree().FindByName(KindList, "backlog")
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
	if got := matches[0].Path(); got != "Engineering / Sprint 1 / Backlog" {
		t.Errorf("Path() = %q", got)
	}
}

func TestFindByID(t *testing.T) {
	root := sampleTree()

	m, ok := root.FindByID(KindFolder, "456")
	if !ok {
		t.Fatal("FindByID() did not find folder 456")
	}
	if m.Node.Name != "Sprint 1" {
		t.Errorf("Name = %s, want Sprint 1", m.Node.Name)
	}
	if len(m.Ancestors) != 2 {
		t.Errorf("len(Ancestors) = %d, want 2", len(m.Ancestors))
	}

	if _, ok := root.FindByID(KindList, "456"); ok {
		t.Error("FindByID() matched an ID of the wrong kind")
	}
}

func TestCount(t *testing.T) {
	root := sampleTree()
	if got := root.Count(KindList); got != 2 {
		t.Errorf("Count(list) = %d, want 2", got)
	}
	if got := root.Count(KindSpace); got != 2 {
		t.Errorf("Count(space) = %d, want 2", got)
	}
}

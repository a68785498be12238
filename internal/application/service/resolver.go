package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"clickup-mcp/internal/domain/workspace"
)

// Scope holds the ancestor hints that narrow a name lookup.
type Scope struct {
	SpaceID    string `json:"spaceId,omitempty"`
	SpaceName  string `json:"spaceName,omitempty"`
	FolderID   string `json:"folderId,omitempty"`
	FolderName string `json:"folderName,omitempty"`
	ListID     string `json:"listId,omitempty"`
	ListName   string `json:"listName,omitempty"`
}

// HasSpace reports whether a space hint is present.
func (s Scope) HasSpace() bool {
	return strings.TrimSpace(s.SpaceID) != "" || strings.TrimSpace(s.SpaceName) != ""
}

// Ref identifies an entity by ID, or by name plus scope.
type Ref struct {
	ID    string
	Name  string
	Scope Scope
}

// TaskRef identifies a task by ID, custom ID, or name plus scope.
type TaskRef struct {
	TaskID       string `json:"taskId,omitempty"`
	CustomTaskID string `json:"customTaskId,omitempty"`
	TaskName     string `json:"taskName,omitempty"`
	Scope
}

// IsZero reports whether no identifying field is set.
func (r TaskRef) IsZero() bool {
	return strings.TrimSpace(r.TaskID) == "" && strings.TrimSpace(r.CustomTaskID) == "" && strings.TrimSpace(r.TaskName) == ""
}

// Resolver maps human-readable names onto entity IDs.
type Resolver struct {
	hierarchy *WorkspaceService
	logger    *slog.Logger
}

// NewResolver creates a resolver reading hierarchy snapshots from hierarchy.
func NewResolver(hierarchy *WorkspaceService, logger *slog.Logger) *Resolver {
	return &Resolver{
		hierarchy: hierarchy,
		logger:    logger,
	}
}

// NewLookup starts a lookup session. All resolutions made through one
// Lookup share a single hierarchy snapshot, fetched on first need.
func (r *Resolver) NewLookup() *Lookup {
	return &Lookup{r: r, tasks: make(map[string][]workspace.Task)}
}

// Resolve is a one-shot lookup.
func (r *Resolver) Resolve(ctx context.Context, kind workspace.Kind, ref Ref) (string, error) {
	return r.NewLookup().Resolve(ctx, kind, ref)
}

// Lookup is a resolution session over one hierarchy snapshot.
// It is safe for concurrent use.
type Lookup struct {
	r *Resolver

	mu    sync.Mutex
	tree  *workspace.Node
	tasks map[string][]workspace.Task
}

func (l *Lookup) snapshot(ctx context.Context) (*workspace.Node, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tree != nil {
		return l.tree, nil
	}
	tree, err := l.r.hierarchy.GetHierarchy(ctx, HierarchyOptions{})
	if err != nil {
		return nil, err
	}
	l.tree = tree
	return tree, nil
}

func (l *Lookup) listTasks(ctx context.Context, listID string) ([]workspace.Task, error) {
	l.mu.Lock()
	tasks, ok := l.tasks[listID]
	l.mu.Unlock()
	if ok {
		return tasks, nil
	}

	tasks, err := l.r.hierarchy.TasksForList(ctx, listID)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.tasks[listID] = tasks
	l.mu.Unlock()
	return tasks, nil
}

// Resolve returns the ID of the entity of the given kind that ref names.
// A non-empty ref.ID is returned unchanged without any remote call.
func (l *Lookup) Resolve(ctx context.Context, kind workspace.Kind, ref Ref) (string, error) {
	if id := strings.TrimSpace(ref.ID); id != "" {
		return id, nil
	}

	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return "", workspace.NewValidationError(string(kind)+"Id", "either %sId or %sName is required", kind, kind)
	}

	switch kind {
	case workspace.KindSpace, workspace.KindList:
	case workspace.KindFolder:
		if !ref.Scope.HasSpace() {
			return "", workspace.NewValidationError("spaceId", "spaceId or spaceName is required when using folderName")
		}
	case workspace.KindTask:
		return l.resolveTask(ctx, name, ref.Scope)
	default:
		return "", workspace.NewValidationError("type", "cannot resolve entities of type %q", kind)
	}

	tree, err := l.snapshot(ctx)
	if err != nil {
		return "", err
	}
	scope, desc, err := narrow(tree, ref.Scope, kind)
	if err != nil {
		return "", err
	}

	id, err := pick(kind, name, desc, scope.FindByName(kind, name))
	if err != nil {
		return "", err
	}
	l.r.logger.Debug("name resolved", "type", kind, "name", name, "id", id)
	return id, nil
}

// ResolveTask returns the target for a task reference. Custom IDs are
// honoured explicitly or detected from the taskId shape.
func (l *Lookup) ResolveTask(ctx context.Context, ref TaskRef) (workspace.TaskTarget, error) {
	if id := strings.TrimSpace(ref.CustomTaskID); id != "" {
		return workspace.TaskTarget{ID: id, Custom: true}, nil
	}
	if id := strings.TrimSpace(ref.TaskID); id != "" {
		return workspace.NewTaskTarget(id), nil
	}
	if strings.TrimSpace(ref.TaskName) == "" {
		return workspace.TaskTarget{}, workspace.NewValidationError("taskId", "either taskId, customTaskId or taskName is required")
	}
	id, err := l.Resolve(ctx, workspace.KindTask, Ref{Name: ref.TaskName, Scope: ref.Scope})
	if err != nil {
		return workspace.TaskTarget{}, err
	}
	return workspace.TaskTarget{ID: id}, nil
}

func (l *Lookup) resolveTask(ctx context.Context, name string, scope Scope) (string, error) {
	var (
		lists []workspace.Match
		desc  string
	)
	if id := strings.TrimSpace(scope.ListID); id != "" {
		lists = []workspace.Match{{Node: &workspace.Node{ID: id, Name: "list " + id, Kind: workspace.KindList}}}
		desc = fmt.Sprintf("list %s", id)
	} else {
		tree, err := l.snapshot(ctx)
		if err != nil {
			return "", err
		}
		node, d, err := narrow(tree, scope, workspace.KindTask)
		if err != nil {
			return "", err
		}
		desc = d
		if node.Kind == workspace.KindList {
			lists = []workspace.Match{{Node: node}}
		} else {
			node.Walk(func(n *workspace.Node, ancestors []*workspace.Node) bool {
				if n.Kind == workspace.KindList {
					lists = append(lists, workspace.Match{Node: n, Ancestors: ancestors})
					return false
				}
				return true
			})
		}
	}

	matches, err := l.searchTasks(ctx, lists, name)
	if err != nil {
		return "", err
	}
	id, err := pick(workspace.KindTask, name, desc, matches)
	if err != nil {
		return "", err
	}
	l.r.logger.Debug("task name resolved", "name", name, "id", id, "lists_searched", len(lists))
	return id, nil
}

func (l *Lookup) searchTasks(ctx context.Context, lists []workspace.Match, name string) ([]workspace.Match, error) {
	var (
		mu      sync.Mutex
		matches []workspace.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.r.hierarchy.concurrency)
	for _, list := range lists {
		g.Go(func() error {
			tasks, err := l.listTasks(gctx, list.Node.ID)
			if err != nil {
				return err
			}
			ancestors := append(list.Ancestors[:len(list.Ancestors):len(list.Ancestors)], list.Node)
			for _, t := range tasks {
				if strings.EqualFold(strings.TrimSpace(t.Name), name) {
					mu.Lock()
					matches = append(matches, workspace.Match{
						Node:      &workspace.Node{ID: t.ID, Name: t.Name, Kind: workspace.KindTask},
						Ancestors: ancestors,
					})
					mu.Unlock()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matches, nil
}

// narrow walks the scope hints down from root and returns the deepest node
// they identify together with a human-readable description of it.
func narrow(root *workspace.Node, scope Scope, kind workspace.Kind) (*workspace.Node, string, error) {
	node := root
	var desc []string

	step := func(k workspace.Kind, id, name string) error {
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		switch {
		case id != "":
			m, ok := node.FindByID(k, id)
			if !ok {
				return &workspace.ResolutionError{Kind: k, Name: id, Scope: strings.Join(desc, " > "), Err: workspace.ErrNotFound}
			}
			node = m.Node
		case name != "":
			matches := node.FindByName(k, name)
			if _, err := pick(k, name, strings.Join(desc, " > "), matches); err != nil {
				return err
			}
			node = matches[0].Node
		default:
			return nil
		}
		desc = append(desc, fmt.Sprintf("%s %q", k, node.Name))
		return nil
	}

	if err := step(workspace.KindSpace, scope.SpaceID, scope.SpaceName); err != nil {
		return nil, "", err
	}
	if kind == workspace.KindList || kind == workspace.KindTask {
		if err := step(workspace.KindFolder, scope.FolderID, scope.FolderName); err != nil {
			return nil, "", err
		}
	}
	if kind == workspace.KindTask {
		if err := step(workspace.KindList, scope.ListID, scope.ListName); err != nil {
			return nil, "", err
		}
	}
	return node, strings.Join(desc, " > "), nil
}

// pick returns the single match's ID or a ResolutionError.
func pick(kind workspace.Kind, name, scope string, matches []workspace.Match) (string, error) {
	switch len(matches) {
	case 1:
		return matches[0].Node.ID, nil
	case 0:
		return "", &workspace.ResolutionError{Kind: kind, Name: name, Scope: scope, Err: workspace.ErrNotFound}
	}

	candidates := make([]workspace.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, workspace.Candidate{ID: m.Node.ID, Path: m.Path()})
	}
	return "", &workspace.ResolutionError{
		Kind:       kind,
		Name:       name,
		Scope:      scope,
		Candidates: candidates,
		Hint:       disambiguationHint(kind),
		Err:        workspace.ErrAmbiguous,
	}
}

func disambiguationHint(kind workspace.Kind) string {
	switch kind {
	case workspace.KindSpace:
		return "Use spaceId instead"
	case workspace.KindFolder:
		return "Use folderId instead"
	case workspace.KindList:
		return "Provide folderName or spaceName, or use listId"
	case workspace.KindTask:
		return "Provide listName, or use taskId"
	}
	return ""
}

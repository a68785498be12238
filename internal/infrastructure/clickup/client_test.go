package clickup

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"clickup-mcp/internal/domain/workspace"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type recordingObserver struct {
	mu     sync.Mutex
	routes []string
	status []int
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes = append(o.routes, method+" "+route)
	o.status = append(o.status, status)
}

// newTestClient starts a server that records the request and replies with
// the given status and body.
func newTestClient(t *testing.T, status int, body string) (*Client, *recordedRequest, *recordingObserver) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.EscapedPath()
		rec.Query = r.URL.RawQuery
		rec.Auth = r.Header.Get("Authorization")
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	obs := &recordingObserver{}
	c, err := New(Options{
		BaseURL:  srv.URL,
		APIKey:   "pk_test",
		TeamID:   "9000",
		Timeout:  5 * time.Second,
		Observer: obs,
	})
	require.NoError(t, err)
	return c, rec, obs
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestClient_GetSpaces(t *testing.T) {
	c, rec, obs := newTestClient(t, http.StatusOK, `{"spaces":[{"id":"123","name":"Engineering","private":false}]}`)

	spaces, err := c.GetSpaces(context.Background(), "9000")
	require.NoError(t, err)
	require.Len(t, spaces, 1)
	assert.Equal(t, workspace.Space{ID: "123", Name: "Engineering"}, spaces[0])

	assert.Equal(t, http.MethodGet, rec.Method)
	assert.Equal(t, "/team/9000/space", rec.Path)
	assert.Equal(t, "archived=false", rec.Query)
	assert.Equal(t, "pk_test", rec.Auth)
	assert.Equal(t, []string{"GET /team/{id}/space"}, obs.routes)
	assert.Equal(t, []int{200}, obs.status)
}

func TestClient_GetFoldersAttachesLists(t *testing.T) {
	c, _, _ := newTestClient(t, http.StatusOK, `{"folders":[{
		"id":"456","name":"Sprint 1","task_count":"3","override_statuses":true,
		"space":{"id":"123","name":"Engineering"},
		"lists":[{"id":"789","name":"Backlog","task_count":2,"status":null}]
	}]}`)

	folders, err := c.GetFolders(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, folders, 1)

	f := folders[0]
	assert.Equal(t, 3, f.TaskCount)
	assert.True(t, f.OverrideStatuses)
	require.Len(t, f.Lists, 1)
	assert.Equal(t, &workspace.EntityRef{ID: "456", Name: "Sprint 1"}, f.Lists[0].Folder)
	assert.Equal(t, "123", f.Lists[0].Space.ID)
	assert.Equal(t, 2, f.Lists[0].TaskCount)
}

func TestClient_GetTaskDecodesWireFormats(t *testing.T) {
	c, rec, _ := newTestClient(t, http.StatusOK, `{
		"id":"abc1","custom_id":"DEV-42","name":"Fix login",
		"status":{"status":"in progress","color":"#4194f6","type":"custom"},
		"priority":{"id":"2","priority":"high","color":"#ffcc00"},
		"due_date":"1767225600000","start_date":null,
		"assignees":[{"id":7,"username":"ann"}],
		"tags":[{"name":"bug","tag_fg":"#fff","tag_bg":"#f00"}],
		"list":{"id":"789","name":"Backlog"},"folder":{"id":"456","name":"Sprint 1"},"space":{"id":"123"}
	}`)

	task, err := c.GetTask(context.Background(), workspace.NewTaskTarget("DEV-42"), true)
	require.NoError(t, err)

	assert.Equal(t, "/task/DEV-42", rec.Path)
	assert.Contains(t, rec.Query, "custom_task_ids=true")
	assert.Contains(t, rec.Query, "team_id=9000")
	assert.Contains(t, rec.Query, "include_subtasks=true")

	assert.Equal(t, "abc1", task.ID)
	assert.Equal(t, &workspace.Priority{ID: 2, Label: "high", Color: "#ffcc00"}, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, task.StartDate)
	assert.Equal(t, []workspace.User{{ID: 7, Username: "ann"}}, task.Assignees)
	assert.Equal(t, "789", task.List.ID)
}

func TestClient_CreateTaskBody(t *testing.T) {
	c, rec, _ := newTestClient(t, http.StatusOK, `{"id":"new1","name":"Ship it","list":{"id":"789"}}`)

	due := time.Date(2026, 4, 1, 15, 30, 0, 0, time.UTC)
	prio := 1
	task, err := c.CreateTask(context.Background(), "789", workspace.CreateTask{
		Name:     "Ship it",
		Priority: &prio,
		DueDate:  &due,
		Tags:     []string{"release"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new1", task.ID)

	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/list/789/task", rec.Path)
	assert.Equal(t, "Ship it", rec.Body["name"])
	assert.EqualValues(t, 1, rec.Body["priority"])
	assert.EqualValues(t, due.UnixMilli(), rec.Body["due_date"])
	assert.Equal(t, true, rec.Body["due_date_time"])
	assert.NotContains(t, rec.Body, "start_date")
}

func TestClient_GetTasksPaging(t *testing.T) {
	c, rec, _ := newTestClient(t, http.StatusOK, `{"tasks":[{"id":"t1","name":"a"}],"last_page":false}`)

	page, err := c.GetTasks(context.Background(), "789", workspace.TaskFilter{
		Page:          2,
		IncludeClosed: true,
		Statuses:      []string{"open", "review"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.False(t, page.LastPage)
	require.Len(t, page.Items, 1)

	assert.Contains(t, rec.Query, "page=2")
	assert.Contains(t, rec.Query, "include_closed=true")
	assert.Contains(t, rec.Query, "statuses%5B%5D=open")
	assert.Contains(t, rec.Query, "statuses%5B%5D=review")
}

func TestClient_WorkspaceTasksInfersLastPage(t *testing.T) {
	c, rec, _ := newTestClient(t, http.StatusOK, `{"tasks":[{"id":"t1","name":"a"}]}`)

	page, err := c.GetWorkspaceTasks(context.Background(), "9000", workspace.WorkspaceTaskFilter{
		FolderIDs: []string{"456"},
		Tags:      []string{"bug"},
	})
	require.NoError(t, err)
	assert.True(t, page.LastPage)
	assert.Equal(t, "/team/9000/task", rec.Path)
	assert.Contains(t, rec.Query, "project_ids%5B%5D=456")
	assert.Contains(t, rec.Query, "tags%5B%5D=bug")
}

func TestClient_TagEndpoints(t *testing.T) {
	c, rec, _ := newTestClient(t, http.StatusOK, `{}`)
	ctx := context.Background()

	tag, err := c.CreateSpaceTag(ctx, "123", workspace.TagInput{Name: "bug", FG: "#fff", BG: "#f00"})
	require.NoError(t, err)
	assert.Equal(t, "bug", tag.Name)
	assert.Equal(t, map[string]any{"name": "bug", "tag_fg": "#fff", "tag_bg": "#f00"}, rec.Body["tag"])

	_, err = c.UpdateSpaceTag(ctx, "123", "old name", workspace.TagInput{Name: "new", FG: "#000", BG: "#fff"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.Method)
	assert.Equal(t, "/space/123/tag/old%20name", rec.Path)
	assert.Equal(t, map[string]any{"name": "new", "fg_color": "#000", "bg_color": "#fff"}, rec.Body["tag"])

	require.NoError(t, c.RemoveTagFromTask(ctx, workspace.TaskTarget{ID: "t1"}, "bug"))
	assert.Equal(t, http.MethodDelete, rec.Method)
	assert.Equal(t, "/task/t1/tag/bug", rec.Path)
	assert.Empty(t, rec.Query)
}

func TestClient_CreateTaskComment(t *testing.T) {
	c, rec, _ := newTestClient(t, http.StatusOK, `{"id":458315,"hist_id":"26508","date":1767225600000}`)

	comment, err := c.CreateTaskComment(context.Background(), workspace.TaskTarget{ID: "t1"}, workspace.CreateComment{
		Text:      "Looks good",
		NotifyAll: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "458315", comment.ID)
	assert.Equal(t, "Looks good", comment.Text)
	require.NotNil(t, comment.Date)
	assert.Equal(t, "Looks good", rec.Body["comment_text"])
	assert.Equal(t, true, rec.Body["notify_all"])
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		message  string
	}{
		{
			name:     "not found with code",
			status:   http.StatusNotFound,
			body:     `{"err":"Task not found","ECODE":"ITEM_013"}`,
			sentinel: workspace.ErrNotFound,
			message:  "clickup: Task not found (ITEM_013, status 404)",
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"err":"Rate limit reached","ECODE":"APP_002"}`,
			sentinel: workspace.ErrRateLimited,
			message:  "clickup: Rate limit reached (APP_002, status 429)",
		},
		{
			name:     "plain text body",
			status:   http.StatusUnauthorized,
			body:     "Unauthorized",
			sentinel: workspace.ErrUnauthorized,
			message:  "clickup: Unauthorized (status 401)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, obs := newTestClient(t, tt.status, tt.body)

			_, err := c.GetList(context.Background(), "789")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "error %v should match %v", err, tt.sentinel)
			assert.EqualError(t, err, tt.message)

			var apiErr *workspace.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, "/list/789", apiErr.Path)
			assert.Equal(t, []int{tt.status}, obs.status)
		})
	}
}

func TestClient_AccessTokenUsesBearer(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"id":"123","name":"Engineering"}`)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, APIKey: "pk_ignored", AccessToken: "oauth-token"})
	require.NoError(t, err)

	_, err = c.GetSpace(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer oauth-token", auth)
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	c, _, _ := newTestClient(t, http.StatusOK, `{}`)
	c.limiter = rate.NewLimiter(rate.Limit(0.001), 1)

	// the first request consumes the burst
	require.NoError(t, c.DeleteList(context.Background(), "1"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.DeleteList(ctx, "2")
	require.Error(t, err)
}

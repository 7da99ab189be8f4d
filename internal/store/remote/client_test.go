package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/noteshelf/internal/note"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", 5*time.Second)
}

func TestCreateNote(t *testing.T) {
	edited := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notes/", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]string{"category": "c1", "title": "Groceries", "content": ""}, in)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": "n1", "category": "c1", "category_name": "Random Thoughts", "category_color": "#FFA07A",
			"title": "Groceries", "content": "", "created_at": edited, "last_edited_at": edited,
		})
	})

	n, err := c.CreateNote(context.Background(), note.NewNote{CategoryID: "c1", Title: "Groceries"})
	require.NoError(t, err)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, "Random Thoughts", n.CategoryName)
	assert.True(t, n.LastEditedAt.Equal(edited))
}

func TestUpdateNoteSendsOnlyPatchFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/notes/n1/", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"category":"c2"}`, string(raw))
		json.NewEncoder(w).Encode(map[string]any{"id": "n1", "category": "c2"})
	})

	cat := "c2"
	n, err := c.UpdateNote(context.Background(), "n1", note.Patch{CategoryID: &cat})
	require.NoError(t, err)
	assert.Equal(t, "c2", n.CategoryID)
}

func TestListNotesFilterAndOrder(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes/", r.URL.Path)
		assert.Equal(t, "c1", r.URL.Query().Get("categoryId"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "b", "last_edited_at": t1},
			{"id": "c", "last_edited_at": t1.Add(time.Minute)},
			{"id": "a", "last_edited_at": t1},
		})
	})

	items, err := c.ListNotes(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestListCategoriesSorted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories/", r.URL.Path)
		json.NewEncoder(w).Encode([]note.Category{
			{ID: "2", Name: "School", SortOrder: 2},
			{ID: "1", Name: "Random Thoughts", SortOrder: 1},
		})
	})
	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "1", cats[0].ID)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   note.Kind
		field  string
	}{
		{"validation", http.StatusBadRequest, `{"category":["Invalid pk \"x\" - object does not exist."]}`, note.KindValidation, "category"},
		{"non field validation", http.StatusBadRequest, `{"non_field_errors":["bad"]}`, note.KindValidation, ""},
		{"unparseable validation", http.StatusBadRequest, `oops`, note.KindValidation, ""},
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Invalid token."}`, note.KindAuth, ""},
		{"forbidden", http.StatusForbidden, `{}`, note.KindAuth, ""},
		{"not found", http.StatusNotFound, `{"detail":"Not found."}`, note.KindNotFound, ""},
		{"server error", http.StatusBadGateway, ``, note.KindNetwork, ""},
		{"teapot", http.StatusTeapot, `short and stout`, note.KindUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.GetNote(context.Background(), "n1")
			require.Error(t, err)
			assert.Equal(t, tt.kind, note.KindOf(err))
			assert.Equal(t, tt.field, note.FieldOf(err))
		})
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, "secret", time.Second)
	_, err := c.ListNotes(context.Background(), "")
	assert.Equal(t, note.KindNetwork, note.KindOf(err))
}

func TestNoTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()
	_, err := NewClient(srv.URL, "", time.Second).ListCategories(context.Background())
	require.NoError(t, err)
}

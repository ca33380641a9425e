package vfs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMarshalJSON(t *testing.T) {
	file := NewFile(NewRoute("site", "index.html"), "hello")

	data, err := json.Marshal(file)
	require.NoError(t, err)

	assert.JSONEq(t,
		`{"type":"file","route":["site","index.html"],"contents":"hello"}`,
		string(data))
}

func TestDirMarshalJSON(t *testing.T) {
	dir := NewDir(NewRoute("site"), map[string]Item{
		"index.html": NewFile(NewRoute("site", "index.html"), "hello"),
		"assets":     NewDir(NewRoute("site", "assets"), nil),
	})

	data, err := json.Marshal(dir)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "dir",
		"route": ["site"],
		"children": {
			"index.html": {"type":"file","route":["site","index.html"],"contents":"hello"},
			"assets": {"type":"dir","route":["site","assets"],"children":{}}
		}
	}`, string(data))
}

func TestEmptyDirMarshalsChildrenAsObject(t *testing.T) {
	data, err := json.Marshal(NewDir(NewRoute("site"), nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"children":{}`)
}

func TestUnmarshalItem(t *testing.T) {
	t.Run("nested tree", func(t *testing.T) {
		raw := `{
			"type": "dir",
			"route": ["site"],
			"children": {
				"index.html": {"type":"file","route":["site","index.html"],"contents":"hello"},
				"posts": {
					"type": "dir",
					"route": ["site","posts"],
					"children": {
						"first.md": {"type":"file","route":["site","posts","first.md"],"contents":"# one"}
					}
				}
			}
		}`

		item, err := UnmarshalItem([]byte(raw))
		require.NoError(t, err)

		root, ok := item.(*Dir)
		require.True(t, ok)
		assert.True(t, root.Route().Equal(NewRoute("site")))

		index, ok := root.Child("index.html")
		require.True(t, ok)
		assert.Equal(t, "hello", index.(*File).Contents())

		posts, ok := root.Child("posts")
		require.True(t, ok)
		first, ok := posts.(*Dir).Child("first.md")
		require.True(t, ok)
		assert.Equal(t, "# one", first.(*File).Contents())
	})

	t.Run("unknown type tag", func(t *testing.T) {
		_, err := UnmarshalItem([]byte(`{"type":"socket","route":["a"]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown item type")
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := UnmarshalItem([]byte(`{`))
		require.Error(t, err)
	})
}

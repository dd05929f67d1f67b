package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/cedit/analysis"
)

func TestTemplates(t *testing.T) {
	tmpls := Templates()
	var names []string
	for _, tmpl := range tmpls {
		names = append(names, tmpl.Name)
		assert.NotEmpty(t, tmpl.Description, tmpl.Name)
		require.NotEmpty(t, tmpl.Files, tmpl.Name)
		for _, f := range tmpl.Files {
			res := analysis.Parse(f.Content)
			assert.Empty(t, res.Diagnostics, "%s/%s", tmpl.Name, f.Name)
		}
	}
	assert.Equal(t, []string{"Hello World", "Multi-file Project", "Data Structures", "Empty Project"}, names)

	hello, ok := TemplateByName("Hello World")
	require.True(t, ok)
	assert.Equal(t, DefaultContent, hello.Files[0].Content)

	_, ok = TemplateByName("Nope")
	assert.False(t, ok)
}

func TestTemplates_ReturnsCopies(t *testing.T) {
	first := Templates()
	first[0].Name = "changed"
	first[0].Files[0].Content = "changed"

	again := Templates()
	assert.Equal(t, "Hello World", again[0].Name)
	assert.Equal(t, DefaultContent, again[0].Files[0].Content)
}

func TestStore_TemplateProjects(t *testing.T) {
	st := NewStore()
	ds, _ := TemplateByName("Data Structures")
	_, err := st.NewProject(ds)
	require.NoError(t, err)
	empty, _ := TemplateByName("Empty Project")
	_, err = st.NewProject(empty)
	require.NoError(t, err)

	sess := requireValid(t, st)
	assert.Equal(t, []string{"main.c", "list.h", "list.c"}, sess.Projects[1].DocumentNames())
	assert.Equal(t, []string{"untitled.c"}, sess.Projects[2].DocumentNames())
	assert.Equal(t, "", sess.Projects[2].Documents[0].Content)
}

func TestLoadTemplates_Errors(t *testing.T) {
	_, err := LoadTemplates(strings.NewReader("[[template]]\nname = \"x\"\ncolour = 1\n"))
	assert.Error(t, err)

	_, err = LoadTemplates(strings.NewReader("[[template]]\ndescription = \"no name\"\n"))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = LoadTemplates(strings.NewReader("not toml ["))
	assert.Error(t, err)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/cedit/persist"
	"github.com/dhamidi/cedit/session"
)

func TestSummarize(t *testing.T) {
	store := session.NewStore()
	_, err := store.UpdateContent(0, 0, "int x")
	require.NoError(t, err)

	sum := summarize(persist.LoadResult{Status: persist.StatusRecovered, Repairs: []string{"fixed"}}, store.Session())

	assert.Equal(t, "recovered", sum.Status)
	assert.Equal(t, []string{"fixed"}, sum.Repairs)
	require.Len(t, sum.Projects, 1)
	p := sum.Projects[0]
	assert.Equal(t, session.DefaultProjectName, p.Name)
	assert.Equal(t, session.DefaultDocumentName, p.Active)
	require.Len(t, p.Documents, 1)
	assert.Equal(t, 5, p.Documents[0].Bytes)
	require.Len(t, p.Documents[0].Diagnostics, 1)
}

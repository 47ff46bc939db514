package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "seed", "create-user", "reset-password", "process"}, names)

	cmd, _, err := root.Find([]string{"reset-password"})
	require.NoError(t, err)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"admin@invitalia.it"}))
}

func TestProcessRejectsBadID(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"process", "not-a-uuid"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid product file id")
}

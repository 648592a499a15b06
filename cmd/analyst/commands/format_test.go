package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://analyst:xxxxx@db:5432/analyst", maskPassword("postgres://analyst:secret@db:5432/analyst"))
	assert.Equal(t, "postgres://db/analyst", maskPassword("postgres://db/analyst"))
}

func TestOrNone(t *testing.T) {
	assert.Equal(t, "none", orNone(""))
	assert.Equal(t, "2024-03-04", orNone("2024-03-04"))
}

func TestCommandTree(t *testing.T) {
	want := [][]string{
		{"scheduler", "start"}, {"scheduler", "list"}, {"scheduler", "run"}, {"scheduler", "status"},
		{"knowledge", "consolidate"}, {"knowledge", "prune"}, {"knowledge", "stats"},
		{"review", "pending"}, {"export"}, {"api"}, {"check"},
	}
	for _, path := range want {
		cmd, _, err := rootCmd.Find(path)
		if assert.NoError(t, err, path) {
			assert.Equal(t, path[len(path)-1], cmd.Name())
		}
	}
}

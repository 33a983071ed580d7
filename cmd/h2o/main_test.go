package main

import (
	"testing"
)

func TestRootCommandShape(t *testing.T) {
	root := newRootCmd()

	for _, flag := range []string{"debug", "no-interaction", "url", "context"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("root is missing persistent flag --%s", flag)
		}
	}

	for _, path := range [][]string{
		{"demo", "gbm"},
		{"demo", "glm"},
		{"demo", "deeplearning"},
		{"demo", "list"},
		{"cloud", "status"},
		{"context", "list"},
		{"context", "use"},
		{"context", "add"},
		{"context", "remove"},
	} {
		cmd, rest, err := root.Find(path)
		if err != nil || len(rest) != 0 || cmd.Name() != path[len(path)-1] {
			t.Fatalf("Find(%v) = %v, %v, %v", path, cmd.Name(), rest, err)
		}
	}
}

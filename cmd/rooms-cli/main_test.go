package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ExitCodes(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("API_BASE_URL", "http://127.0.0.1:1")

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"filters", "load"}, &out, &errOut))
	assert.Contains(t, out.String(), "No saved filters")

	out.Reset()
	errOut.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"rooms", "get"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "invalid usage")
}

func TestRun_BadConfig(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "tape")

	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{"me"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "STORAGE_DRIVER")
}

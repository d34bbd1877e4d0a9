package confirm

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/nmsweep/internal/types"
)

func TestAccepts(t *testing.T) {
	cases := map[string]bool{
		"y\n":     true,
		"Y":       true,
		" yes ":   true,
		"YES\r\n": true,
		"n":       false,
		"no":      false,
		"":        false,
		"yep":     false,
	}
	for in, want := range cases {
		assert.Equal(t, want, Accepts(in), "Accepts(%q)", in)
	}
}

func TestPrompt(t *testing.T) {
	matches := types.MatchSet{"/p/node_modules"}
	for in, want := range map[string]bool{"yes\n": true, "n\n": false, "y": true, "": false} {
		var out bytes.Buffer
		ok, err := Prompt{In: strings.NewReader(in), Out: &out}.Confirm(context.Background(), matches)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, ok, "input %q", in)
		assert.Contains(t, out.String(), "(y/n)")
	}
}

func TestPromptInterrupted(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := Prompt{In: r, Out: io.Discard}.Confirm(ctx, nil)
	assert.False(t, ok, "interrupted prompt must not approve")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuto(t *testing.T) {
	ok, err := Auto.Confirm(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yourorg/nmsweep/internal/types"
)

// Decider gates the deletion pipeline.
type Decider interface {
	Confirm(ctx context.Context, matches types.MatchSet) (bool, error)
}

// Func adapts a plain function to Decider.
type Func func(ctx context.Context, matches types.MatchSet) (bool, error)

func (f Func) Confirm(ctx context.Context, m types.MatchSet) (bool, error) { return f(ctx, m) }

// Auto approves without asking.
var Auto = Func(func(context.Context, types.MatchSet) (bool, error) { return true, nil })

const question = "\nDo you want to delete these node_modules directories? (y/n): "

// Prompt asks on Out and reads one line from In. Only "y" or "yes"
// (any case) approves; EOF declines.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

func (p Prompt) Confirm(ctx context.Context, _ types.MatchSet) (bool, error) {
	if _, err := fmt.Fprint(p.Out, question); err != nil {
		return false, err
	}

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, a.err
		}
		return Accepts(a.line), nil
	}
}

// Accepts reports whether an answer approves deletion.
func Accepts(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

// internal/control/lines.go
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// ViewPrompt is shown when a write command carries no view.
const ViewPrompt = "Enter view number (1-4): "

// ReadLines feeds q from a line-oriented reader until EOF or ctx is done.
//
// A write without a view prompts on out and takes the view from the next line.
// EOF pushes Terminate so the loop ends when input is closed.
func ReadLines(ctx context.Context, r io.Reader, out io.Writer, q *Queue) error {
	sc := bufio.NewScanner(r)

	next := func() (string, bool) {
		if ctx.Err() != nil || !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}

	for {
		line, ok := next()
		if !ok {
			break
		}

		req, err := Parse(line)
		if errors.Is(err, ErrViewRequired) {
			fmt.Fprint(out, ViewPrompt)
			raw, ok := next()
			if !ok {
				break
			}
			req.View, err = ParseView(raw)
		}
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}
		if req.Signal == Continue {
			continue
		}

		if !q.Push(req) {
			fmt.Fprintf(out, "busy, %s dropped\n", req.Signal)
			continue
		}
		if req.Signal == WriteNow {
			fmt.Fprintf(out, "Writing data for view %d\n", req.View)
		}
		if req.Signal == Terminate {
			return nil
		}
	}

	q.Push(Request{Signal: Terminate})
	return sc.Err()
}

package control

import (
	"strings"

	"github.com/abiosoft/ishell"
)

const shellPrompt = "pb> "

// Shell is the interactive operator console.
// Its commands mirror the line protocol: r, w <view>, q.
type Shell struct {
	Shell *ishell.Shell
	queue *Queue
}

// NewShell creates a shell pushing commands onto q.
func NewShell(q *Queue) *Shell {
	s := &Shell{
		Shell: ishell.New(),
		queue: q,
	}
	s.Shell.SetPrompt(shellPrompt)

	s.Shell.AddCmd(&ishell.Cmd{
		Name: "r",
		Help: "begin the read cycle",
		Func: func(c *ishell.Context) {
			s.queue.Push(Request{Signal: Read})
		},
	})
	s.Shell.AddCmd(&ishell.Cmd{
		Name: "w",
		Help: "write the current result back to the master: w <view 1-4>",
		Func: s.write,
	})
	s.Shell.AddCmd(&ishell.Cmd{
		Name:    "q",
		Aliases: []string{"quit", Escape},
		Help:    "terminate the exchange",
		Func: func(c *ishell.Context) {
			s.terminate()
			c.Stop()
		},
	})

	s.Shell.Interrupt(func(c *ishell.Context, count int, input string) {
		s.terminate()
		c.Stop()
	})
	s.Shell.EOF(func(c *ishell.Context) {
		s.terminate()
		c.Stop()
	})
	s.Shell.NotFound(func(c *ishell.Context) {
		if len(c.Args) > 0 && strings.HasPrefix(c.Args[0], Escape) {
			s.terminate()
			c.Stop()
			return
		}
		c.Println("(r) READ I/O data  (w) WRITE I/O data  (q) QUIT")
	})
	return s
}

func (s *Shell) write(c *ishell.Context) {
	var raw string
	if len(c.Args) > 0 {
		raw = c.Args[0]
	} else {
		c.Print(ViewPrompt)
		raw = c.ReadLine()
	}

	view, err := ParseView(raw)
	if err != nil {
		c.Err(err)
		return
	}
	if !s.queue.Push(Request{Signal: WriteNow, View: view}) {
		c.Println("busy, write dropped")
		return
	}
	c.Printf("Writing data for view %d\n", view)
}

func (s *Shell) terminate() {
	s.queue.Push(Request{Signal: Terminate})
}

// Run blocks until the operator quits.
func (s *Shell) Run() {
	s.Shell.Println("*** (r) READ I/O data  (w) WRITE I/O data  (q) QUIT ***")
	s.Shell.Run()
	s.Shell.Close()
}

// Package shell is an interactive test client for a buffer device. It reads
// one command per line, checks request sizes against the device capacity
// and prints the outcome of each call.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"buffdev/bufdev"
)

type handler func([]string) error

type command struct {
	name    string
	usage   string
	help    string
	argc    int
	maxArgc int
	needsFD bool
	handler handler
}

// Babbler - the device's talker
type Babbler struct {
	mu       sync.Mutex // serializes Exec and Shutdown over file
	store    *bufdev.Store
	file     *bufdev.File
	commands map[string]*command
	out      io.Writer
	log      zerolog.Logger
	quit     bool

	errlog  *color.Color
	infolog *color.Color
	oklog   *color.Color
	cyan    *color.Color
}

// Babble creates a shell bound to store, printing to out
func Babble(store *bufdev.Store, out io.Writer, log zerolog.Logger) *Babbler {
	b := &Babbler{
		store:    store,
		commands: make(map[string]*command),
		out:      out,
		log:      log,
		errlog:   color.New(color.FgHiRed),
		infolog:  color.New(color.FgYellow),
		oklog:    color.New(color.FgGreen),
		cyan:     color.New(color.FgHiCyan),
	}
	b.register()
	return b
}

// add registers c, replacing any command of the same name
func (b *Babbler) add(c *command) {
	if c.maxArgc < c.argc {
		c.maxArgc = c.argc
	}
	b.commands[c.name] = c
}

// Exec runs a single command line. It is safe to call concurrently with
// Shutdown.
func (b *Babbler) Exec(input string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}
	name, args := parts[0], parts[1:]

	cmd, ok := b.commands[name]
	if !ok {
		fmt.Fprintln(b.out, "unknown command, try help")
		return
	}

	if len(args) < cmd.argc || len(args) > cmd.maxArgc {
		b.infolog.Fprintf(b.out, "Usage %s\n", cmd.usage)
		return
	}

	if cmd.needsFD && b.file == nil {
		b.errlog.Fprintln(b.out, "device not open")
		return
	}

	if err := cmd.handler(args); err != nil {
		b.log.Debug().Err(err).Str("cmd", name).Msg("command failed")
		b.errlog.Fprintln(b.out, err)
	}
}

// Run reads commands from in until EOF or quit
func (b *Babbler) Run(in io.Reader) error {
	b.prompt()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		b.Exec(scanner.Text())
		if b.quit {
			break
		}
		b.prompt()
	}
	return scanner.Err()
}

// Shutdown closes a handle left open by the session
func (b *Babbler) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return nil
	}
	err := b.file.Close()
	b.file = nil
	return err
}

func (b *Babbler) prompt() {
	b.cyan.Fprint(b.out, "$ ")
}

func (b *Babbler) sortedCommands() []*command {
	cmds := make([]*command, 0, len(b.commands))
	for _, cmd := range b.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].name < cmds[j].name })
	return cmds
}

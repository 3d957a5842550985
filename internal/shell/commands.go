package shell

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"buffdev/bufdev"
)

func (b *Babbler) register() {
	b.add(&command{name: "open", usage: "open", help: "open the device", handler: b.open})
	b.add(&command{name: "close", usage: "close", help: "close the device", needsFD: true, handler: b.close})
	b.add(&command{name: "read", usage: "read <size>", help: "read size bytes at the cursor", argc: 1, needsFD: true, handler: b.read})
	b.add(&command{name: "write", usage: "write <size>", help: "write the pattern 0,1,2,... of size bytes", argc: 1, needsFD: true, handler: b.write})
	b.add(&command{name: "seek", usage: "seek <pos> [start|current|end]", help: "move the cursor", argc: 1, maxArgc: 2, needsFD: true, handler: b.seek})
	b.add(&command{name: "help", usage: "help", help: "list commands", handler: b.help})
	b.add(&command{name: "quit", usage: "quit", help: "leave the shell", handler: b.exit})
}

// parseSize validates a request size against the device capacity before it
// reaches the store.
func (b *Babbler) parseSize(arg string) (int, error) {
	size, err := strconv.Atoi(arg)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid size %q", arg)
	}
	if int64(size) > b.store.Capacity() {
		return 0, errors.New("Size Exceeds Buffer")
	}
	return size, nil
}

func (b *Babbler) open(args []string) error {
	if b.file != nil {
		return errors.New("device already open in this shell")
	}

	f, err := b.store.OpenFile()
	if err != nil {
		return errors.Wrap(err, "Open Failed")
	}
	b.file = f
	b.oklog.Fprintln(b.out, "File Open Success")
	return nil
}

func (b *Babbler) close(args []string) error {
	err := b.file.Close()
	b.file = nil
	if err != nil {
		return errors.Wrap(err, "Close Failed")
	}
	b.oklog.Fprintln(b.out, "File Close Success")
	return nil
}

func (b *Babbler) read(args []string) error {
	size, err := b.parseSize(args[0])
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	n, err := b.file.Read(buf)
	if err == io.EOF {
		err = &os.PathError{Op: "read", Path: b.store.Name(), Err: bufdev.ErrEndOfDevice}
	}
	if err != nil {
		return errors.Wrap(err, "Read Failed")
	}

	b.oklog.Fprintln(b.out, "File Read Success")
	fmt.Fprintln(b.out, formatBytes(buf[:n]))
	return nil
}

func (b *Babbler) write(args []string) error {
	size, err := b.parseSize(args[0])
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i)
	}

	n, err := b.file.Write(buf)
	if err != nil && err != io.ErrShortWrite {
		return errors.Wrap(err, "Write Failed")
	}

	b.oklog.Fprintf(b.out, "File Write Success: %d bytes\n", n)
	return nil
}

func (b *Babbler) seek(args []string) error {
	pos, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid position %q", args[0])
	}

	whence := bufdev.FromStart
	if len(args) == 2 {
		w, ok := bufdev.ParseWhence(args[1])
		if !ok {
			return fmt.Errorf("unknown origin %q", args[1])
		}
		whence = w
	}

	if whence == bufdev.FromStart && pos > b.store.Capacity() {
		return errors.New("Position Exceeds Buffer Size")
	}

	cur, err := b.file.Seek(pos, int(whence))
	if err != nil {
		return errors.Wrap(err, "Lseek Failed")
	}
	fmt.Fprintf(b.out, "Current Position %d\n", cur)
	return nil
}

func (b *Babbler) help(args []string) error {
	for _, cmd := range b.sortedCommands() {
		fmt.Fprintf(b.out, "%s\t : %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintln(b.out)
	return nil
}

func (b *Babbler) exit(args []string) error {
	b.quit = true
	return nil
}

func formatBytes(p []byte) string {
	var sb strings.Builder
	for i, c := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(c)))
	}
	return sb.String()
}

package credential

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/xabinapal/shunctl/internal/secret"
)

// Request identifies the secret being asked for.
type Request struct {
	Target string
	Field  string
}

// Prompter asks the operator for a secret. Implementations block until the
// operator answers.
type Prompter interface {
	Prompt(ctx context.Context, req Request) (secret.Secret, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, req Request) (secret.Secret, error)

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(ctx context.Context, req Request) (secret.Secret, error) {
	return f(ctx, req)
}

// NoPrompter refuses every request with ErrMissingCredential. It is used for
// batch runs that must never block.
func NoPrompter() Prompter {
	return PrompterFunc(func(_ context.Context, req Request) (secret.Secret, error) {
		return nil, fmt.Errorf("%w: %s for %q (prompting disabled)", ErrMissingCredential, req.Field, req.Target)
	})
}

// TerminalPrompter reads secrets from a terminal without echo. When the input
// is not a terminal it reads one line per request.
type TerminalPrompter struct {
	mu     sync.Mutex
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

// NewTerminalPrompter returns a prompter reading from in and writing prompts
// to out.
func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

// Prompt implements Prompter. Concurrent requests are serialized so prompts
// from parallel runs never interleave on the terminal.
func (p *TerminalPrompter) Prompt(ctx context.Context, req Request) (secret.Secret, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "%s for %s: ", promptLabel(req.Field), req.Target)

	if fd, ok := terminalFd(p.in); ok {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", req.Field, err)
		}
		defer clear(b)
		return secret.FromBytes(b), nil
	}

	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", req.Field, err)
	}
	return secret.FromString(strings.TrimRight(line, "\r\n")), nil
}

func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd()) // #nosec G115 - file descriptors fit in int
	return fd, term.IsTerminal(fd)
}

func promptLabel(field string) string {
	switch field {
	case "enable_password":
		return "Enable password"
	case "password":
		return "Password"
	default:
		return field
	}
}

package dispatch

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/coral-mesh/qrscan/internal/logging"
)

// Performer carries out an action.
type Performer interface {
	Perform(ctx context.Context, action Action) error
}

// PerformerFunc adapts a function to Performer.
type PerformerFunc func(ctx context.Context, action Action) error

func (f PerformerFunc) Perform(ctx context.Context, action Action) error {
	return f(ctx, action)
}

// TerminalPerformer renders actions as markdown cards. Copy actions also
// emit an OSC 52 sequence so terminals that support it place the payload
// on the clipboard.
type TerminalPerformer struct {
	out       io.Writer
	renderer  *glamour.TermRenderer
	clipboard bool
}

// NewTerminalPerformer creates a performer writing to out. Colour styling
// is used only when out is a terminal and NO_COLOR is unset.
func NewTerminalPerformer(out io.Writer) (*TerminalPerformer, error) {
	tty := logging.IsTerminal(out)

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if !tty || os.Getenv("NO_COLOR") != "" {
		opts = append(opts, glamour.WithStylePath("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &TerminalPerformer{out: out, renderer: renderer, clipboard: tty}, nil
}

func (p *TerminalPerformer) Perform(_ context.Context, action Action) error {
	rendered, err := p.renderer.Render(Markdown(action))
	if err != nil {
		return fmt.Errorf("render action: %w", err)
	}
	if _, err := io.WriteString(p.out, rendered); err != nil {
		return err
	}

	if action.Kind == KindCopy && p.clipboard {
		seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(action.Text)) + "\x07"
		if _, err := io.WriteString(p.out, seq); err != nil {
			return err
		}
	}
	return nil
}

// Markdown describes an action as a short markdown card.
func Markdown(action Action) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", action.Label)

	if len(action.Fields) > 0 {
		keys := make([]string, 0, len(action.Fields))
		for k := range action.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("| Field | Value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", k, escapeCell(action.Fields[k]))
		}
		return b.String()
	}

	if target := action.Target(); target != "" {
		fmt.Fprintf(&b, "`%s`\n", target)
		return b.String()
	}
	fmt.Fprintf(&b, "```\n%s\n```\n", action.Text)
	return b.String()
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// Runner starts an external command.
type Runner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// SystemOpener hands URI targets to the desktop's default handler and passes
// everything else to Fallback.
type SystemOpener struct {
	Fallback Performer
	// Run defaults to running the command with os/exec.
	Run Runner
	// GOOS defaults to runtime.GOOS.
	GOOS string
}

func (o *SystemOpener) Perform(ctx context.Context, action Action) error {
	target := action.Target()
	if target == "" {
		if o.Fallback == nil {
			return fmt.Errorf("no handler for %s action", action.Kind)
		}
		return o.Fallback.Perform(ctx, action)
	}

	run := o.Run
	if run == nil {
		run = execRunner
	}
	name, args := openCommand(o.goos(), target)
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("open %s: %w", action.Kind, err)
	}
	return nil
}

func (o *SystemOpener) goos() string {
	if o.GOOS != "" {
		return o.GOOS
	}
	return runtime.GOOS
}

func openCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	}
	return "xdg-open", []string{target}
}

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/moffa90/go-dbfu/ports"
	"github.com/moffa90/go-dbfu/updater"
)

// operator is the terminal side of an update: it answers the prompts,
// draws progress and waits for acknowledgment before exit.
type operator struct {
	in  *bufio.Reader
	out io.Writer

	// interactive is false when stdin is not a terminal; Pause is then a no-op
	interactive bool

	bar *progressbar.ProgressBar
}

func newOperator(in io.Reader, out io.Writer) *operator {
	op := &operator{
		in:  bufio.NewReader(in),
		out: out,
	}
	if f, ok := in.(*os.File); ok {
		op.interactive = term.IsTerminal(int(f.Fd()))
	}
	return op
}

// ChoosePort lists the candidates and returns the operator's answer as typed.
func (op *operator) ChoosePort(candidates []ports.Candidate) (string, error) {
	fmt.Fprintln(op.out, "Multiple devices detected:")
	for _, c := range candidates {
		fmt.Fprintf(op.out, "  %s\n", c)
	}
	return op.ask("Select COM port: ")
}

// PromptImage asks for the path of the firmware image.
func (op *operator) PromptImage() (string, error) {
	path, err := op.ask("Firmware image path: ")
	if err != nil {
		return "", err
	}
	return strings.Trim(path, `"'`), nil
}

// Pause waits for Enter so the result stays visible when run from a shortcut.
func (op *operator) Pause() {
	if !op.interactive {
		return
	}
	fmt.Fprint(op.out, "Press Enter to continue...")
	_, _ = op.in.ReadString('\n')
}

// Progress renders session progress.
func (op *operator) Progress(p updater.Progress) {
	switch p.Phase {
	case updater.PhaseConnecting:
		fmt.Fprintln(op.out, "Connecting to serial port...")
	case updater.PhaseWaiting:
		fmt.Fprintln(op.out, "Waiting for device to initiate update...")
	case updater.PhaseTransferring:
		if op.bar == nil {
			fmt.Fprintln(op.out, "Starting File Transfer")
			op.bar = progressbar.NewOptions64(max(p.TotalBytes, 1),
				progressbar.OptionSetWriter(op.out),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Writing"),
				progressbar.OptionShowBytes(true),
				progressbar.OptionShowCount(),
			)
		}
		_ = op.bar.Set64(p.BytesSent)
	case updater.PhaseComplete:
		if op.bar != nil {
			_ = op.bar.Finish()
			fmt.Fprintln(op.out)
		}
	}
}

// Opener reports a successful connection before the session continues.
func (op *operator) Opener(open updater.Opener) updater.Opener {
	return func(name string) (io.ReadWriteCloser, error) {
		conn, err := open(name)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(op.out, "Connected to %s\n", name)
		return conn, nil
	}
}

func (op *operator) ask(prompt string) (string, error) {
	fmt.Fprint(op.out, prompt)
	line, err := op.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

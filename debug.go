package sio

import (
	"fmt"
	"io"
	"os"

	"github.com/siowire/socket.io-client-go/internal/sync"
	"github.com/xiegeo/coloredgoroutine"
)

type (
	// Debugger is the logging capability of the engine. The zero
	// configuration is a no-op; nothing in the engine requires a
	// working logger.
	Debugger interface {
		Log(main string, v ...any)
		WithContext(context string) Debugger
	}

	noopDebugger struct{}

	printDebugger struct {
		out     io.Writer
		context string
	}
)

func NewNoopDebugger() Debugger { return noopDebugger{} }

func (d noopDebugger) Log(main string, _ ...any) {}

func (d noopDebugger) WithContext(context string) Debugger { return d }

func NewPrintDebugger() Debugger {
	return &printDebugger{out: coloredgoroutine.Colors(os.Stdout)}
}

var printMu sync.Mutex

// Fields are joined with ": ".
func (d *printDebugger) Log(main string, v ...any) {
	printMu.Lock()
	defer printMu.Unlock()

	if d.context != "" {
		fmt.Fprint(d.out, d.context, ": ")
	}
	fmt.Fprint(d.out, main)
	for _, value := range v {
		fmt.Fprint(d.out, ": ", value)
	}
	fmt.Fprint(d.out, "\n")
}

func (d printDebugger) WithContext(context string) Debugger {
	if d.context != "" {
		d.context += ": " + context
	} else {
		d.context = context
	}
	return &d
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Projects(ctx context.Context) error
	Use(ctx context.Context, args []string) error
	List(ctx context.Context, kind string) error
	Open(ctx context.Context, args []string) error
	Download(ctx context.Context) error
	Offline(ctx context.Context, args []string) error
	Flush(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print
// their own diagnostics. This keeps the loop itself resilient.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sitesinc %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: projects, use <projectId>, drawings, documents, rfis, forms, submissions, photos, open <drawingId>, download, offline on|off, flush, status, logout, exit")
			} else {
				printlnFn("Available commands: login, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "projects":
			_ = a.Projects(ctx)

		case "use":
			_ = a.Use(ctx, args)

		case "drawings", "documents", "rfis", "forms", "submissions", "photos":
			_ = a.List(ctx, cmd)

		case "open":
			_ = a.Open(ctx, args)

		case "download":
			_ = a.Download(ctx)

		case "offline":
			_ = a.Offline(ctx, args)

		case "flush":
			_ = a.Flush(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

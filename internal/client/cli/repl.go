package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Contacts(ctx context.Context) error
	AddContact(ctx context.Context) error
	Lend(ctx context.Context) error
	Borrow(ctx context.Context) error
	Records(ctx context.Context) error
	Complete(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Balance(ctx context.Context) error
	Sync(ctx context.Context) error
	Push(ctx context.Context, args []string) error
	Pull(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: register, login, whoami, contacts, addcontact, lend, borrow, records, complete <id>, delete contact|record <id>, balance, exit"
	helpSignedIn  = "Available commands: whoami, contacts, addcontact, lend, borrow, records, complete <id>, delete contact|record <id>, balance, sync, push [kind], pull, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the ledger CLI.
//
// It reads a line from in, parses the first token as the command and
// dispatches to methods on 'a'; remaining tokens are passed to commands
// that take arguments. The loop exits on EOF or when the user types "exit"
// or "quit".
//
// Command errors are printed and the loop goes on. Handlers read their own
// prompts from the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ledger %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "contacts":
			cmdErr = a.Contacts(ctx)
		case "addcontact":
			cmdErr = a.AddContact(ctx)
		case "lend":
			cmdErr = a.Lend(ctx)
		case "borrow":
			cmdErr = a.Borrow(ctx)
		case "records", "l", "list":
			cmdErr = a.Records(ctx)
		case "complete":
			cmdErr = a.Complete(ctx, args)
		case "delete":
			cmdErr = a.Delete(ctx, args)
		case "balance":
			cmdErr = a.Balance(ctx)

		case "sync":
			cmdErr = a.Sync(ctx)
		case "push":
			cmdErr = a.Push(ctx, args)
		case "pull":
			cmdErr = a.Pull(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
		if err != nil {
			return
		}
	}
}

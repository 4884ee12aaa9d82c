package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/shared"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register prompts for a username and password and creates an account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can log in now.")
	return nil
}

// Login authenticates against the server. Anything recorded while
// offline is moved onto the account and synced.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	defer a.pauseSync()()
	out, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", userName)
	fmt.Fprintln(a.out, out.String())
	return nil
}

// Logout removes the account's data from this device and starts a fresh
// local ledger.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	defer a.pauseSync()()
	out := a.authService.Logout(ctx)
	fmt.Fprintln(a.out, out.String())
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	s, err := a.authService.Session(ctx)
	if err != nil {
		return err
	}
	if s.SignedIn {
		fmt.Fprintf(a.out, "%s (account %s), %s\n", s.Username, s.IdentityID, a.mode())
	} else {
		fmt.Fprintf(a.out, "local user %s, not logged in\n", s.OwnerID)
	}
	return nil
}

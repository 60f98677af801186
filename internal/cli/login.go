package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/lewisnorthcott/sitesinc-offline/internal/auth"
	"github.com/lewisnorthcott/sitesinc-offline/internal/common"
)

// Login asks for a session token and installs it on the API client. The
// token is read without echo when stdin is a terminal, with a plain line
// read as fallback.
func (a *App) Login(ctx context.Context) error {
	raw, err := GetSecret(os.Stdout, "Paste session token: ")
	if err != nil {
		line, rerr := GetSimpleText(a.reader, "Paste session token", os.Stdout)
		if rerr != nil {
			a.log.Error(ctx, "token read failed", "error", rerr)
			return rerr
		}
		raw = []byte(line)
	}
	defer common.WipeBytes(raw)

	token := auth.New(strings.TrimSpace(string(raw)))
	if token.Empty() {
		printlnFn("No token entered, staying logged out.")
		return nil
	}
	if token.Expired(time.Now()) {
		printlnFn("That token has already expired, request a fresh one.")
		return nil
	}

	a.setToken(token)
	printlnFn("Logged in.")
	return nil
}

// Logout drops the session token. Cached project data stays on disk.
func (a *App) Logout(ctx context.Context) error {
	a.setToken(auth.Token{})
	printlnFn("Logged out.")
	return nil
}

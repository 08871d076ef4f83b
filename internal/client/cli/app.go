// Package cli implements the interactive memberkeeper command line.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/memberkeeper/internal/client/client"
	"github.com/dmitrijs2005/memberkeeper/internal/client/config"
)

// AccountClient is the remote surface the CLI drives.
type AccountClient interface {
	Register(ctx context.Context, r client.Registration) (*client.Account, error)
	Login(ctx context.Context, email, password string) (*client.Account, error)
	WhoAmI(ctx context.Context) (*client.Account, error)
	LoggedIn() bool
	Logout()
	Close() error
}

type App struct {
	client  AccountClient
	timeout time.Duration
	email   string
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(apiClient, c.RequestTimeout, os.Stdin, os.Stdout), nil
}

func newApp(c AccountClient, timeout time.Duration, in io.Reader, out io.Writer) *App {
	return &App{client: c, timeout: timeout, reader: bufio.NewReader(in), out: out}
}

// Run serves the REPL until EOF or "exit".
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ")"
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

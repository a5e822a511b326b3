package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/userdir/internal/client/client"
	"github.com/dmitrijs2005/userdir/internal/client/config"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
)

// ErrUsage is returned for a missing or unknown command, or bad arguments.
var ErrUsage = errors.New("usage")

type userAPI interface {
	Register(ctx context.Context, req *pb.RegisterRequest) (*pb.AuthResponse, error)
	Login(ctx context.Context, email string, password []byte) (*pb.AuthResponse, error)
	Me(ctx context.Context) (*pb.User, error)
	List(ctx context.Context, page, limit int32) (*pb.ListUsersResponse, error)
	Delete(ctx context.Context, id string) error
	SetTokens(access, refresh string)
	Close() error
}

// getSimpleText and getPassword point at the interactive input helpers and
// are swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	config *config.Config
	api    userAPI
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	api.SetTokens(c.AccessToken, c.RefreshToken)

	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

// Run executes the command named in the configuration and closes the
// connection.
func (a *App) Run(ctx context.Context) error {
	defer a.api.Close()

	if len(a.config.Args) == 0 {
		a.help()
		return ErrUsage
	}

	cmd, args := a.config.Args[0], a.config.Args[1:]

	switch cmd {
	case "help":
		a.help()
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx, args)
	case "me":
		return a.Me(ctx)
	case "list":
		return a.List(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		a.help()
		return ErrUsage
	}
}

func (a *App) help() {
	fmt.Fprintln(a.out, "Usage: client [-a addr] [-token t] [-refresh r] <command>")
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  register              create an account and print tokens")
	fmt.Fprintln(a.out, "  login [email]         sign in and print tokens")
	fmt.Fprintln(a.out, "  me                    show the signed-in account")
	fmt.Fprintln(a.out, "  list [page] [limit]   list accounts")
	fmt.Fprintln(a.out, "  delete <id>           delete your own account")
	fmt.Fprintln(a.out, "  version               print build information")
}

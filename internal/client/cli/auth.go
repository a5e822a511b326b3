package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userdir/internal/common"
	pb "github.com/dmitrijs2005/userdir/internal/proto"
)

func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	req := &pb.RegisterRequest{Email: email, Username: username, Password: string(password)}
	if fullName != "" {
		req.FullName = &fullName
	}

	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Fprintln(a.out, "Registered.")
	a.printAuth(resp)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	a.printAuth(resp)
	return nil
}

func (a *App) printAuth(resp *pb.AuthResponse) {
	if resp.User != nil {
		a.printUser(resp.User)
	}
	fmt.Fprintf(a.out, "token_type:    %s\n", resp.TokenType)
	fmt.Fprintf(a.out, "expires_in:    %d\n", resp.ExpiresIn)
	fmt.Fprintf(a.out, "access_token:  %s\n", resp.AccessToken)
	fmt.Fprintf(a.out, "refresh_token: %s\n", resp.RefreshToken)
}

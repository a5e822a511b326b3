package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	pb "github.com/dmitrijs2005/userdir/internal/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return fmt.Errorf("me: %w", err)
	}
	a.printUser(u)
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	var page, limit int32
	if len(args) > 0 {
		v, err := parsePositive(args[0])
		if err != nil {
			return fmt.Errorf("%w: page %q: %v", ErrUsage, args[0], err)
		}
		page = v
	}
	if len(args) > 1 {
		v, err := parsePositive(args[1])
		if err != nil {
			return fmt.Errorf("%w: limit %q: %v", ErrUsage, args[1], err)
		}
		limit = v
	}

	resp, err := a.api.List(ctx, page, limit)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tUSERNAME\tACTIVE\tCREATED")
	for _, u := range resp.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", u.Id, u.Email, u.Username, u.IsActive, formatTime(u.GetCreatedAt()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d of %d, %d total\n", resp.Page, resp.TotalPages, resp.Total)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete <id>", ErrUsage)
	}
	if err := a.api.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}

func (a *App) printUser(u *pb.User) {
	fullName := "-"
	if u.FullName != nil {
		fullName = *u.FullName
	}
	fmt.Fprintf(a.out, "id:            %s\n", u.Id)
	fmt.Fprintf(a.out, "email:         %s\n", u.Email)
	fmt.Fprintf(a.out, "username:      %s\n", u.Username)
	fmt.Fprintf(a.out, "full_name:     %s\n", fullName)
	fmt.Fprintf(a.out, "active:        %t\n", u.IsActive)
	fmt.Fprintf(a.out, "created_at:    %s\n", formatTime(u.GetCreatedAt()))
}

func parsePositive(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, errors.New("must be at least 1")
	}
	return int32(v), nil
}

func formatTime(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.AsTime().UTC().Format(time.RFC3339)
}

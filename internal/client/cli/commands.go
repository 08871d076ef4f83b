package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/memberkeeper/internal/client/client"
)

func (a *App) Register(ctx context.Context) error {
	var r client.Registration
	prompts := []struct {
		dst    *string
		prompt string
	}{
		{&r.Name, "Name"},
		{&r.Email, "Email"},
		{&r.PhoneNumber, "Phone number (digits only)"},
		{&r.Gender, "Gender (Male, Female, Other)"},
		{&r.DateOfBirth, "Date of birth (YYYY-MM-DD)"},
		{&r.MembershipStatus, "Membership status (Active, Inactive, Suspended)"},
	}
	for _, p := range prompts {
		v, err := GetSimpleText(a.reader, p.prompt, a.out)
		if err != nil {
			return a.fail(err)
		}
		*p.dst = v
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return a.fail(err)
	}
	defer wipe(pw)
	r.Password = string(pw)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	acc, err := a.client.Register(ctx, r)
	if err != nil {
		return a.fail(err)
	}
	a.email = acc.Email
	fmt.Fprintf(a.out, "Registered %s (%s)\n", acc.Email, acc.ID)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return a.fail(err)
	}
	pw, err := GetPassword(a.out)
	if err != nil {
		return a.fail(err)
	}
	defer wipe(pw)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	acc, err := a.client.Login(ctx, email, string(pw))
	if err != nil {
		return a.fail(err)
	}
	a.email = acc.Email
	fmt.Fprintf(a.out, "Welcome, %s\n", acc.Name)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	acc, err := a.client.WhoAmI(ctx)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.out, "ID:         %s\n", acc.ID)
	fmt.Fprintf(a.out, "Name:       %s\n", acc.Name)
	fmt.Fprintf(a.out, "Email:      %s\n", acc.Email)
	fmt.Fprintf(a.out, "Phone:      %s\n", acc.PhoneNumber)
	fmt.Fprintf(a.out, "Gender:     %s\n", acc.Gender)
	fmt.Fprintf(a.out, "Born:       %s\n", acc.DateOfBirth)
	fmt.Fprintf(a.out, "Membership: %s\n", acc.MembershipStatus)
	return nil
}

func (a *App) Logout(_ context.Context) error {
	a.client.Logout()
	a.email = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) fail(err error) error {
	fmt.Fprintln(a.out, "Error:", err.Error())
	return err
}

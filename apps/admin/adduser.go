package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/tourney/core"
	"github.com/trezcool/tourney/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanLower(uname)
	email = core.CleanLower(email)

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}})
	exists := err == nil
	if err != nil && err != user.ErrNotFound {
		return err
	}
	if !exists {
		usr = user.User{ID: uuid.New().String()}
	}
	usr.Username = uname
	usr.Email = email
	usr.IsActive = true
	usr.IsAdmin = isAdmin
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		if err := cli.usrRepo.CheckUniqueness(ctx, uname, email, usr.ID); err != nil {
			return err
		}
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}

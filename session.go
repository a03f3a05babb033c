package main

import (
	"context"
	"errors"
	"fmt"

	"library-console/library"
)

const maxLoginAttempts = 3

var errTooManyAttempts = fmt.Errorf("login failed %d times", maxLoginAttempts)

// menuItem is one numbered option. "0" always logs out.
type menuItem struct {
	key    string
	label  string
	action func(ctx context.Context, sess *library.Session) error
}

// run logs in and serves the role's menu until logout or end of input.
func (c *console) run(ctx context.Context) error {
	c.section("Library Management System")
	c.muted("Log in with an administrator username or a member email.")

	sess, err := c.login(ctx)
	if err != nil {
		if errors.Is(err, errInputClosed) {
			return nil
		}
		return err
	}
	defer c.mgr.Logout(sess)

	c.success("Welcome, %s (%s)", sess.Name, sess.Role)

	items := c.memberMenu()
	if sess.IsAdministrator() {
		items = c.adminMenu()
	}
	err = c.serve(ctx, sess, items)
	if errors.Is(err, errInputClosed) {
		err = nil
	}
	c.println("Goodbye!")
	return err
}

func (c *console) login(ctx context.Context) (*library.Session, error) {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		identity, err := c.ask("Username or email: ")
		if err != nil {
			return nil, err
		}
		secret, err := c.askSecret("Password: ")
		if err != nil {
			return nil, err
		}

		sess, err := c.mgr.Login(ctx, identity, secret)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, library.ErrAuthFailure) {
			return nil, err
		}
		c.failure("Invalid credentials (attempt %d of %d).", attempt, maxLoginAttempts)
	}
	return nil, errTooManyAttempts
}

// serve is the blocking request/response loop. An action error is fatal
// only if it is errInputClosed; anything else was already reported.
func (c *console) serve(ctx context.Context, sess *library.Session, items []menuItem) error {
	for {
		c.println()
		for _, it := range items {
			c.printf("  %s) %s\n", it.key, it.label)
		}
		c.println("  0) Log out")

		choice, err := c.ask("\n> ")
		if err != nil {
			return err
		}
		if choice == "0" {
			return nil
		}

		var action func(context.Context, *library.Session) error
		for _, it := range items {
			if it.key == choice {
				action = it.action
			}
		}
		if action == nil {
			c.warning("Unknown option %q. Choose one of the numbers listed above.", choice)
			continue
		}
		if err := action(ctx, sess); err != nil {
			if errors.Is(err, errInputClosed) {
				return err
			}
			c.report(err)
		}
	}
}

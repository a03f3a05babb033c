package main

import (
	"context"
	"strings"

	"library-console/library"
)

func (c *console) adminMenu() []menuItem {
	return []menuItem{
		{"1", "Register book", c.handleRegisterBook},
		{"2", "Register member", c.handleRegisterMember},
		{"3", "Register administrator", c.handleRegisterAdministrator},
		{"4", "List books", c.handleListBooks},
		{"5", "List members", c.handleListMembers},
		{"6", "List loans", c.handleListLoans},
	}
}

func (c *console) handleRegisterBook(ctx context.Context, sess *library.Session) error {
	f, err := c.askFields("Title", "Author", "ISBN", "Publisher", "Year", "Category", "Copies")
	if err != nil {
		return err
	}
	id, err := c.mgr.RegisterBook(ctx, sess, library.BookInput{
		Title:     f[0],
		Author:    f[1],
		ISBN:      f[2],
		Publisher: f[3],
		Year:      f[4],
		Category:  f[5],
		Copies:    f[6],
	})
	if err != nil {
		return err
	}
	c.success("Registered book ID %d: %s", id, f[0])
	return nil
}

func (c *console) handleRegisterMember(ctx context.Context, sess *library.Session) error {
	f, err := c.askFields("Name", "Email")
	if err != nil {
		return err
	}
	secret, confirm, err := c.askNewSecret(f[0])
	if err != nil {
		return err
	}
	opt, err := c.askFields("Phone (optional)", "Address (optional)")
	if err != nil {
		return err
	}

	id, err := c.mgr.RegisterMember(ctx, sess, library.MemberInput{
		Name:     f[0],
		Email:    f[1],
		Password: secret,
		Confirm:  confirm,
		Phone:    opt[0],
		Address:  opt[1],
	})
	if err != nil {
		return err
	}
	c.success("Registered member '%s' with ID %d", f[0], id)
	return nil
}

func (c *console) handleRegisterAdministrator(ctx context.Context, sess *library.Session) error {
	f, err := c.askFields("Username", "Name", "Email")
	if err != nil {
		return err
	}
	secret, confirm, err := c.askNewSecret(f[0])
	if err != nil {
		return err
	}

	id, err := c.mgr.RegisterAdministrator(ctx, sess, library.AdministratorInput{
		Username: f[0],
		Name:     f[1],
		Email:    f[2],
		Password: secret,
		Confirm:  confirm,
	})
	if err != nil {
		return err
	}
	c.success("Registered administrator '%s' with ID %d", f[0], id)
	return nil
}

func (c *console) handleListBooks(ctx context.Context, sess *library.Session) error {
	books, err := c.mgr.ListBooks(ctx, sess)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		c.println("No books in library.")
		return nil
	}
	c.printBooks(books)
	return nil
}

func (c *console) printBooks(books []*library.Book) {
	c.printf("%-5s %-30s %-25s %-20s %-15s %-6s %-15s %s\n", "ID", "Title", "Author", "Publisher", "ISBN", "Year", "Category", "Available")
	c.println(strings.Repeat("-", 131))
	for _, b := range books {
		c.printf("%-5d %-30s %-25s %-20s %-15s %-6d %-15s %d\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			truncateString(b.Publisher, 20),
			truncateString(b.ISBN, 15),
			b.Year,
			truncateString(b.Category, 15),
			b.AvailableCount)
	}
}

func (c *console) handleListMembers(ctx context.Context, sess *library.Session) error {
	members, err := c.mgr.ListMembers(ctx, sess)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		c.println("No members registered.")
		return nil
	}

	c.printf("%-5s %-25s %-30s %-15s\n", "ID", "Name", "Email", "Phone")
	c.println(strings.Repeat("-", 80))
	for _, m := range members {
		c.printf("%-5d %-25s %-30s %-15s\n",
			m.ID,
			truncateString(m.Name, 25),
			truncateString(m.Email, 30),
			truncateString(m.Phone, 15))
	}
	return nil
}

func (c *console) handleListLoans(ctx context.Context, sess *library.Session) error {
	loans, err := c.mgr.ListLoans(ctx, sess)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		c.println("No loans recorded.")
		return nil
	}

	period := c.mgr.LoanPeriod()
	c.printf("%-6s %-30s %-20s %-11s %-11s %-11s %s\n", "Loan", "Title", "Member", "Loaned", "Due", "Returned", "State")
	c.println(strings.Repeat("-", 105))
	for _, l := range loans {
		returned := "-"
		if l.ReturnDate != nil {
			returned = formatDate(*l.ReturnDate)
		}
		c.printf("%-6d %-30s %-20s %-11s %-11s %-11s %s\n",
			l.ID,
			truncateString(l.BookTitle, 30),
			truncateString(l.MemberName, 20),
			formatDate(l.LoanDate),
			formatDate(l.DueDate(period)),
			returned,
			l.State)
	}
	return nil
}

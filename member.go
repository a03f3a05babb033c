package main

import (
	"context"
	"strings"

	"library-console/library"
)

func (c *console) memberMenu() []menuItem {
	return []menuItem{
		{"1", "List available books", c.handleListAvailable},
		{"2", "Borrow a book", c.handleBorrow},
		{"3", "My active loans", c.handleMyLoans},
		{"4", "Return a book", c.handleReturn},
	}
}

func (c *console) handleListAvailable(ctx context.Context, sess *library.Session) error {
	books, err := c.mgr.ListAvailableBooks(ctx, sess)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		c.println("No books available right now.")
		return nil
	}
	c.printBooks(books)
	return nil
}

func (c *console) handleBorrow(ctx context.Context, sess *library.Session) error {
	if err := c.handleListAvailable(ctx, sess); err != nil {
		return err
	}
	bookID, ok, err := c.askID("Book ID: ")
	if err != nil || !ok {
		return err
	}
	r, err := c.mgr.Borrow(ctx, sess, bookID)
	if err != nil {
		return err
	}
	c.success("Borrowed '%s' (loan %d)", r.BookTitle, r.LoanID)
	c.printf("  Loan date: %s\n  Due date:  %s\n", formatDate(r.LoanDate), formatDate(r.DueDate))
	return nil
}

func (c *console) handleMyLoans(ctx context.Context, sess *library.Session) error {
	loans, err := c.mgr.MyActiveLoans(ctx, sess)
	if err != nil {
		return err
	}
	if len(loans) == 0 {
		c.println("You have no books on loan.")
		return nil
	}

	period := c.mgr.LoanPeriod()
	c.printf("%-6s %-30s %-25s %-11s %s\n", "Loan", "Title", "Author", "Loaned", "Due")
	c.println(strings.Repeat("-", 90))
	for _, l := range loans {
		c.printf("%-6d %-30s %-25s %-11s %s\n",
			l.ID,
			truncateString(l.BookTitle, 30),
			truncateString(l.BookAuthor, 25),
			formatDate(l.LoanDate),
			formatDate(l.DueDate(period)))
	}
	return nil
}

func (c *console) handleReturn(ctx context.Context, sess *library.Session) error {
	if err := c.handleMyLoans(ctx, sess); err != nil {
		return err
	}
	loanID, ok, err := c.askID("Loan ID: ")
	if err != nil || !ok {
		return err
	}
	r, err := c.mgr.ReturnBook(ctx, sess, loanID)
	if err != nil {
		return err
	}
	c.success("Returned '%s' on %s", r.BookTitle, formatDate(r.ReturnDate))
	return nil
}

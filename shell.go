package main

import (
	"fmt"
	"strings"
)

func (a *app) runShell() error {
	fmt.Fprintln(a.out, "Welcome to the Library Management System!")
	fmt.Fprintln(a.out, "Available commands:")
	fmt.Fprintln(a.out, "  Books: add book, delete, list, search")
	fmt.Fprintln(a.out, "  Circulation: issue, return")
	fmt.Fprintln(a.out, "  System: exit")

	if err := a.list(""); err != nil {
		return err
	}

	for {
		fmt.Fprint(a.out, "\n> ")
		if !a.in.Scan() {
			break
		}
		cmd := strings.TrimSpace(a.in.Text())

		var err error
		switch cmd {
		case "add book":
			err = a.shellAddBook()
		case "issue":
			err = a.shellIssue()
		case "return":
			err = a.shellReturn()
		case "delete":
			err = a.shellDelete()
		case "list":
			err = a.list("")
		case "search":
			err = a.shellSearch()
		case "exit":
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		case "":
			continue
		default:
			fmt.Fprintln(a.out, "Unknown command. Type one of the available commands listed above.")
		}
		if err != nil && err != errReported {
			return err
		}
	}
	return a.in.Err()
}

// ask prompts for one field. ok is false once input is exhausted.
func (a *app) ask(prompt string) (value string, ok bool) {
	fmt.Fprint(a.out, prompt)
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// askAll prompts for each field in order and stops at end of input.
func (a *app) askAll(prompts ...string) ([]string, bool) {
	values := make([]string, 0, len(prompts))
	for _, p := range prompts {
		v, ok := a.ask(p)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

func (a *app) shellAddBook() error {
	v, ok := a.askAll("Book ID: ", "Title: ", "Author: ", "Copies: ")
	if !ok {
		return nil
	}
	return a.mutate(a.mgr.AddBook(v[0], v[1], v[2], v[3]))
}

func (a *app) shellIssue() error {
	v, ok := a.askAll("Book ID: ", "Issued To (USN): ", "Email: ")
	if !ok {
		return nil
	}
	return a.mutate(a.mgr.IssueBook(v[0], v[1], v[2]))
}

func (a *app) shellReturn() error {
	v, ok := a.askAll("Book ID: ", "Issued To (USN): ")
	if !ok {
		return nil
	}
	return a.mutate(a.mgr.ReturnBook(v[0], v[1]))
}

func (a *app) shellDelete() error {
	id, ok := a.ask("Book ID: ")
	if !ok {
		return nil
	}
	return a.delete(id, false)
}

func (a *app) shellSearch() error {
	q, ok := a.ask("Query: ")
	if !ok {
		return nil
	}
	return a.list(q)
}

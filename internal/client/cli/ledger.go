package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/aichopaicho/internal/client/models"
	"github.com/dmitrijs2005/aichopaicho/internal/client/services"
	"github.com/dmitrijs2005/aichopaicho/internal/common"
)

func (a *App) Contacts(ctx context.Context) error {
	list, err := a.ledgerService.ListContacts(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No contacts yet. Use addcontact.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPHONE")
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, c.Phone)
	}
	return w.Flush()
}

func (a *App) AddContact(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Contact name", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Phone (optional)", a.out)
	if err != nil {
		return err
	}

	c, err := a.ledgerService.AddContact(ctx, name, phone)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added contact %s (%s)\n", c.Name, c.ID)
	return nil
}

// findContact matches an id or a case-insensitive name.
func (a *App) findContact(ctx context.Context, ref string) (*models.Contact, error) {
	list, err := a.ledgerService.ListContacts(ctx)
	if err != nil {
		return nil, err
	}
	var byName []*models.Contact
	for _, c := range list {
		if c.ID == ref {
			return c, nil
		}
		if strings.EqualFold(c.Name, ref) {
			byName = append(byName, c)
		}
	}
	switch len(byName) {
	case 0:
		return nil, fmt.Errorf("contact %q: %w", ref, common.ErrorNotFound)
	case 1:
		return byName[0], nil
	default:
		return nil, fmt.Errorf("%d contacts are named %q, use the id", len(byName), ref)
	}
}

func (a *App) Lend(ctx context.Context) error {
	return a.addRecord(ctx, services.Lent)
}

func (a *App) Borrow(ctx context.Context) error {
	return a.addRecord(ctx, services.Borrowed)
}

func (a *App) addRecord(ctx context.Context, dir services.Direction) error {
	ref, err := getSimpleText(a.reader, "Contact (name or id)", a.out)
	if err != nil {
		return err
	}
	contact, err := a.findContact(ctx, ref)
	if err != nil {
		return err
	}

	rawAmount, err := getSimpleText(a.reader, "Amount", a.out)
	if err != nil {
		return err
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return err
	}

	rawDate, err := getSimpleText(a.reader, "Date YYYY-MM-DD (empty for today)", a.out)
	if err != nil {
		return err
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return err
	}

	desc, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}

	r, err := a.ledgerService.AddRecord(ctx, services.NewRecord{
		ContactID:   contact.ID,
		Direction:   dir,
		Amount:      amount,
		Date:        date,
		Description: desc,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Recorded: %s %s %s (%s)\n", dir, r.Amount.StringFixed(2), contact.Name, r.ID)
	return nil
}

func (a *App) Records(ctx context.Context) error {
	views, err := a.ledgerService.ListRecords(ctx)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		fmt.Fprintln(a.out, "No records yet. Use lend or borrow.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tCONTACT\tAMOUNT\tSTATUS\tDESCRIPTION")
	for _, v := range views {
		status := "open"
		if v.Record.IsComplete {
			status = "done"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Record.ID, FormatDate(v.Record.Date), v.Type.Name, v.ContactName,
			v.Record.Amount.StringFixed(2), status, v.Record.Description)
	}
	return w.Flush()
}

func (a *App) Complete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: complete <record id>")
		return nil
	}
	if err := a.ledgerService.CompleteRecord(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Marked as settled.")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: delete contact|record <id>")
		return nil
	}

	var err error
	switch args[0] {
	case "contact":
		err = a.ledgerService.DeleteContact(ctx, args[1])
	case "record":
		err = a.ledgerService.DeleteRecord(ctx, args[1])
	default:
		fmt.Fprintln(a.out, "Usage: delete contact|record <id>")
		return nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("no %s with id %s", args[0], args[1])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	total, err := a.ledgerService.Balance(ctx)
	if err != nil {
		return err
	}
	switch total.Sign() {
	case 1:
		fmt.Fprintf(a.out, "You are owed %s\n", total.StringFixed(2))
	case -1:
		fmt.Fprintf(a.out, "You owe %s\n", total.Neg().StringFixed(2))
	default:
		fmt.Fprintln(a.out, "All settled.")
	}
	return nil
}

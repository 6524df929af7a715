package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"
	"expenses/internal/period"
	"expenses/internal/services"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

type command func(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error

var commands = map[string]command{
	"add":        cmdAdd,
	"get":        cmdGet,
	"list":       cmdList,
	"update":     cmdUpdate,
	"delete":     cmdDelete,
	"categories": cmdCategories,
	"period":     cmdPeriod,
	"trend":      cmdTrend,
	"periods":    cmdPeriods,
}

// usageError marks bad invocations so they exit with exitUsage.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func report(w io.Writer, err error) int {
	fmt.Fprintln(w, "error:", err)

	var ue *usageError
	switch {
	case errors.As(err, &ue), errors.Is(err, flag.ErrHelp):
		return exitUsage
	case errors.Is(err, core.ErrNotFound):
		return exitNotFound
	default:
		return exitFailure
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// categoryHint lists the predefined categories. Other labels are accepted too.
func categoryHint() string {
	known := core.KnownCategories()
	names := make([]string, len(known))
	for i, c := range known {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// singleID parses flags that follow a positional id.
func singleID(fs *flag.FlagSet, args []string) (string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", usagef("%s: missing expense id", fs.Name())
	}
	if err := fs.Parse(args[1:]); err != nil {
		return "", usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return "", usagef("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return args[0], nil
}

func cmdAdd(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	fs := newFlagSet("add")
	amount := fs.String("amount", "", "amount, e.g. 12.50 or 12,50")
	category := fs.String("category", "", "category label, e.g. "+categoryHint())
	description := fs.String("description", "", "free text")
	date := fs.String("date", "", "YYYY-MM-DD, defaults to today")
	if err := fs.Parse(args); err != nil {
		return usagef("add: %v", err)
	}

	a, err := core.ParseAmount(*amount)
	if err != nil {
		return err
	}
	in := core.ExpenseInput{Amount: a, Category: *category, Description: *description}
	if *date != "" {
		if in.Date, err = svc.ParseDate(*date); err != nil {
			return err
		}
	}

	e, err := svc.Create(ctx, in)
	if err != nil {
		return err
	}
	return writeJSON(out, e)
}

func cmdGet(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	id, err := singleID(newFlagSet("get"), args)
	if err != nil {
		return err
	}
	e, err := svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(out, e)
}

func cmdList(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	fs := newFlagSet("list")
	category := fs.String("category", "", "exact category match")
	start := fs.String("start", "", "window start YYYY-MM-DD (needs -end)")
	end := fs.String("end", "", "window end YYYY-MM-DD (needs -start)")
	minAmount := fs.String("min", "", "minimum amount, inclusive")
	maxAmount := fs.String("max", "", "maximum amount, inclusive")
	if err := fs.Parse(args); err != nil {
		return usagef("list: %v", err)
	}

	f := ledger.Filter{Category: *category}
	if *start != "" && *end != "" {
		r, err := period.ParseRange(*start, *end)
		if err != nil {
			return err
		}
		f.Start, f.End = &r.Start, &r.End
	}
	var err error
	if f.MinAmount, err = optionalAmount(*minAmount); err != nil {
		return usagef("list: -min: %v", err)
	}
	if f.MaxAmount, err = optionalAmount(*maxAmount); err != nil {
		return usagef("list: -max: %v", err)
	}

	list, err := svc.List(ctx, f)
	if err != nil {
		return err
	}
	if list == nil {
		list = []core.Expense{}
	}
	return writeJSON(out, list)
}

func optionalAmount(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// cmdUpdate only touches the fields whose flags were given.
func cmdUpdate(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	fs := newFlagSet("update")
	amount := fs.String("amount", "", "new amount")
	category := fs.String("category", "", "new category, e.g. "+categoryHint())
	description := fs.String("description", "", "new description, may be empty")
	date := fs.String("date", "", "new date YYYY-MM-DD")
	id, err := singleID(fs, args)
	if err != nil {
		return err
	}

	var p core.ExpensePatch
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		if parseErr != nil {
			return
		}
		switch f.Name {
		case "amount":
			a, err := core.ParseAmount(*amount)
			parseErr = err
			p.Amount = core.Some(a)
		case "category":
			p.Category = core.Some(*category)
		case "description":
			p.Description = core.Some(*description)
		case "date":
			d, err := svc.ParseDate(*date)
			parseErr = err
			p.Date = core.Some(d)
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if p.IsEmpty() {
		return usagef("update: nothing to change, pass at least one of -amount -category -description -date")
	}

	e, err := svc.Update(ctx, id, p)
	if err != nil {
		return err
	}
	return writeJSON(out, e)
}

func cmdDelete(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	id, err := singleID(newFlagSet("delete"), args)
	if err != nil {
		return err
	}
	if err := svc.Delete(ctx, id); err != nil {
		return err
	}
	return writeJSON(out, map[string]string{"deleted": id})
}

func cmdCategories(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	sums, err := svc.CategorySummary(ctx)
	if err != nil {
		return err
	}
	if sums == nil {
		sums = []core.CategorySummary{}
	}
	return writeJSON(out, sums)
}

func cmdPeriod(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	fs := newFlagSet("period")
	token := fs.String("token", "", strings.Join(period.Tokens(), "|"))
	start := fs.String("start", "", "window start YYYY-MM-DD")
	end := fs.String("end", "", "window end YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return usagef("period: %v", err)
	}

	sum, err := svc.SummaryFor(ctx, *token, *start, *end)
	if err != nil {
		return err
	}
	return writeJSON(out, sum)
}

type trendReport struct {
	Months     []monthJSON `json:"months"`
	Categories []shareJSON `json:"categories"`
}

type monthJSON struct {
	Month  string      `json:"month"`
	Amount json.Number `json:"amount"`
}

type shareJSON struct {
	Category string      `json:"category"`
	Percent  json.Number `json:"percent"`
}

func cmdTrend(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	months, err := svc.MonthlyTrend(ctx)
	if err != nil {
		return err
	}
	shares, err := svc.CategoryPercentages(ctx)
	if err != nil {
		return err
	}

	rep := trendReport{Months: []monthJSON{}, Categories: []shareJSON{}}
	for _, m := range months {
		rep.Months = append(rep.Months, monthJSON{Month: m.Month, Amount: json.Number(m.Amount.String())})
	}
	for _, s := range shares {
		rep.Categories = append(rep.Categories, shareJSON{Category: s.Category, Percent: json.Number(s.Percent.String())})
	}
	return writeJSON(out, rep)
}

type periodJSON struct {
	Token string    `json:"token"`
	Start core.Date `json:"start_date"`
	End   core.Date `json:"end_date"`
}

func cmdPeriods(ctx context.Context, svc *services.ExpenseService, args []string, out io.Writer) error {
	tokens := period.Tokens()
	list := make([]periodJSON, 0, len(tokens))
	for _, tok := range tokens {
		r, err := svc.ResolvePeriod(tok)
		if err != nil {
			return err
		}
		list = append(list, periodJSON{Token: tok, Start: r.Start, End: r.End})
	}
	return writeJSON(out, list)
}

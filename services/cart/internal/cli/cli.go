// Package cli implements the terminal storefront commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/orjumedia/storefront/pkg/currency"
	apperrors "github.com/orjumedia/storefront/pkg/errors"
	"github.com/orjumedia/storefront/services/cart/internal/app"
	"github.com/orjumedia/storefront/services/cart/internal/catalog"
	"github.com/orjumedia/storefront/services/cart/internal/checkout"
	"github.com/orjumedia/storefront/services/cart/internal/store"
)

// ErrUsage is returned for unknown commands or bad arguments.
var ErrUsage = errors.New("usage")

const usage = `usage: cart <command> [arguments]

commands:
  catalog                        list products
  add <id> [size] [quantity]     add a product to the cart
  list                           show the cart
  inc <line> | dec <line>        change a line's quantity by one
  remove <line>                  delete a line
  currency [code]                show or set the display currency
  checkout [-name n] [-email e] [-address a]
                                 start a hosted checkout and print its URL
  watch                          print the cart whenever another session changes it
`

// Runner executes commands against one App.
type Runner struct {
	app *app.App
	out io.Writer
}

// NewRunner creates a Runner writing to out.
func NewRunner(a *app.App, out io.Writer) *Runner {
	return &Runner{app: a, out: out}
}

// Usage prints the command summary.
func (r *Runner) Usage() {
	fmt.Fprint(r.out, usage)
}

// Run executes one command line.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.Usage()
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "catalog":
		return r.catalog()
	case "add":
		return r.add(ctx, rest)
	case "list", "ls":
		r.printCart(r.app.Store().Snapshot())
		return nil
	case "inc":
		return r.changeQuantity(ctx, rest, 1)
	case "dec":
		return r.changeQuantity(ctx, rest, -1)
	case "remove", "rm":
		return r.remove(ctx, rest)
	case "currency":
		return r.currency(ctx, rest)
	case "checkout":
		return r.checkout(ctx, rest)
	case "watch":
		return r.watch(ctx)
	case "help", "-h", "--help":
		r.Usage()
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (r *Runner) catalog() error {
	code := r.app.Store().Currency()
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tOPTIONS")
	for _, p := range catalog.All() {
		options := "one size"
		if len(p.Sizes) > 0 {
			options = strings.Join(p.Sizes, "/")
		}
		if p.MaxPerOrder > 0 {
			options += fmt.Sprintf(", max %d", p.MaxPerOrder)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, currency.FormatReference(p.Price, code), options)
	}
	return tw.Flush()
}

// add accepts the size and quantity in either order; a numeric argument is
// the quantity.
func (r *Runner) add(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 3 {
		return fmt.Errorf("%w: add <id> [size] [quantity]", ErrUsage)
	}

	var size string
	quantity := 1
	for _, arg := range args[1:] {
		if n, err := strconv.Atoi(arg); err == nil {
			quantity = n
			continue
		}
		size = arg
	}

	item, err := catalog.LineItem(args[0], size, quantity)
	if err != nil {
		return err
	}
	if err := r.app.Store().Add(ctx, item); err != nil {
		return err
	}

	label := item.Name
	if item.Size != "" {
		label += " (" + item.Size + ")"
	}
	fmt.Fprintf(r.out, "Added %d x %s\n", item.Quantity, label)
	return nil
}

// lineIndex parses a 1-based line number into a 0-based index.
func (r *Runner) lineIndex(args []string, cmd string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s <line>", ErrUsage, cmd)
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: line must be a number, got %q", ErrUsage, args[0])
	}
	count := len(r.app.Store().Items())
	if line < 1 || line > count {
		return 0, apperrors.InvalidInput(fmt.Sprintf("No line %d in a cart of %d", line, count))
	}
	return line - 1, nil
}

func (r *Runner) changeQuantity(ctx context.Context, args []string, delta int) error {
	cmd := "inc"
	if delta < 0 {
		cmd = "dec"
	}
	index, err := r.lineIndex(args, cmd)
	if err != nil {
		return err
	}
	if err := r.app.Store().ChangeQuantity(ctx, index, delta); err != nil {
		return err
	}
	r.printCart(r.app.Store().Snapshot())
	return nil
}

func (r *Runner) remove(ctx context.Context, args []string) error {
	index, err := r.lineIndex(args, "remove")
	if err != nil {
		return err
	}
	if err := r.app.Store().Remove(ctx, index); err != nil {
		return err
	}
	r.printCart(r.app.Store().Snapshot())
	return nil
}

func (r *Runner) currency(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(r.out, "%s (supported: %s)\n", r.app.Store().Currency(), strings.Join(currency.Supported(), ", "))
		return nil
	case 1:
		if err := r.app.Store().SetCurrency(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Currency set to %s\n", r.app.Store().Currency())
		return nil
	default:
		return fmt.Errorf("%w: currency [code]", ErrUsage)
	}
}

func (r *Runner) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(r.out)
	var customer checkout.Customer
	fs.StringVar(&customer.Name, "name", "", "customer name")
	fs.StringVar(&customer.Email, "email", "", "customer email")
	fs.StringVar(&customer.Address, "address", "", "shipping address")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.app.CheckoutTimeout())
	defer cancel()

	url, err := r.app.Checkout().Submit(ctx, r.app.Store().Snapshot(), &customer)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Complete your payment at:\n%s\n", url)
	return nil
}

func (r *Runner) watch(ctx context.Context) error {
	return r.app.Store().Watch(ctx, func(snap store.Snapshot) {
		fmt.Fprintln(r.out, "--")
		r.printCart(snap)
	})
}

func (r *Runner) printCart(snap store.Snapshot) {
	if len(snap.Items) == 0 {
		fmt.Fprintln(r.out, "Your cart is empty.")
		return
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tITEM\tSIZE\tQTY\tPRICE\tSUBTOTAL")
	for i, item := range snap.Items {
		size := item.Size
		if size == "" {
			size = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			i+1, item.Name, size, item.Quantity,
			currency.FormatReference(item.Price, snap.Currency),
			currency.FormatReference(item.Subtotal(), snap.Currency),
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(r.out, "Total: %s\n", currency.Format(snap.DisplayTotal(), snap.Currency))
}

// Package cli implements estatectl, the operator tool that talks to the
// estate database directly: it applies migrations, registers accounts and
// feeds settlement results into the transaction lifecycle.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/cryptoestate/internal/server/models"
)

type registrar interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
}

type settler interface {
	ApplySettlement(ctx context.Context, upd models.SettlementUpdate) (*models.Transaction, error)
}

type migrator interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
}

type App struct {
	db         *sql.DB
	migrations migrator
	users      registrar
	settlement settler

	in  *bufio.Reader
	out io.Writer
}

func NewApp(db *sql.DB, m migrator, users registrar, settlement settler, in io.Reader, out io.Writer) *App {
	return &App{
		db:         db,
		migrations: m,
		users:      users,
		settlement: settlement,
		in:         bufio.NewReader(in),
		out:        out,
	}
}

const usage = `usage: estatectl <command> [flags]

commands:
  migrate                                  apply database migrations
  register                                 create an account (prompts for details)
  settle -id N -status S [-hash 0x...]     apply a settlement result (S: PENDING, CONFIRMED, FAILED)
`

var commands = map[string]struct{}{
	"migrate": {}, "register": {}, "settle": {}, "help": {},
}

// CommandArgs drops the global config flags in front of the command name,
// so "-d dsn settle -id 1" yields "settle -id 1". It returns nil when no
// command is present.
func CommandArgs(args []string) []string {
	for i, a := range args {
		if _, ok := commands[a]; ok {
			return args[i:]
		}
	}
	return nil
}

// Run executes the command in args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "migrate":
		err = a.migrate(ctx)
	case "register":
		err = a.register(ctx)
	case "settle":
		err = a.settle(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return 0
	default:
		fmt.Fprintf(a.out, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err != nil {
		fmt.Fprintln(a.out, "error:", err)
		return 1
	}
	return 0
}

func (a *App) migrate(ctx context.Context) error {
	if err := a.migrations.RunMigrations(ctx, a.db); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}

func (a *App) register(ctx context.Context) error {
	var in models.RegisterInput
	var err error

	if in.Email, err = GetSimpleText(a.in, "Email", a.out); err != nil {
		return err
	}
	if in.WalletAddress, err = GetSimpleText(a.in, "Wallet address", a.out); err != nil {
		return err
	}
	if in.FullName, err = GetSimpleText(a.in, "Full name", a.out); err != nil {
		return err
	}
	capability, err := GetSimpleText(a.in, "Profile type (BUYER, SELLER, BOTH) [BUYER]", a.out)
	if err != nil {
		return err
	}
	in.Capability = models.Capability(strings.ToUpper(capability))

	if in.Password, err = GetPassword(a.out); err != nil {
		return err
	}

	u, err := a.users.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered user %d (%s)\n", u.ID, u.Capability)
	return nil
}

func (a *App) settle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.Int64("id", 0, "transaction id")
	status := fs.String("status", "", "new status: PENDING, CONFIRMED or FAILED")
	hash := fs.String("hash", "", "on-chain transaction hash")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 || *status == "" {
		return errors.New("settle needs -id and -status")
	}

	upd := models.SettlementUpdate{
		TransactionID: *id,
		Status:        models.TransactionStatus(strings.ToUpper(*status)),
	}
	if *hash != "" {
		upd.Hash = hash
	}

	tx, err := a.settlement.ApplySettlement(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Transaction %d is now %s\n", tx.ID, tx.Status)
	return nil
}

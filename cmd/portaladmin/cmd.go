package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"syscall"

	"github.com/haniSalm/FAST-E-Learning/internal/alumni"
	"github.com/haniSalm/FAST-E-Learning/internal/auth"
	"github.com/haniSalm/FAST-E-Learning/internal/db"
	"github.com/haniSalm/FAST-E-Learning/internal/schema"
	"github.com/haniSalm/FAST-E-Learning/internal/user"

	"github.com/uptrace/bun"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *bun.DB
	users   user.Repository
	authSvc *auth.Service
	alumni  *alumni.Service
	out     io.Writer
	logger  *slog.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                       - create missing tables and constraints")
	fmt.Fprintln(cli.out, "  createsuperuser -email EMAIL  - create a staff superuser; the password is prompted next")
	fmt.Fprintln(cli.out, "  addalumni -email EMAIL        - add an institutional email to the alumni list")
	fmt.Fprintln(cli.out, "  deleteallusers -yes           - delete every user with their comments, ratings and tokens")
	fmt.Fprintln(cli.out, "  cleartokens                   - delete expired refresh tokens")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return db.RunMigrations(ctx, cli.db, schema.Tables()...)

	case "createsuperuser":
		fs := cli.flagSet("createsuperuser")
		email := fs.String("email", "", "The superuser's email. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*email) == "" {
			fs.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			fs.Usage()
			return errHelp
		}
		return cli.createSuperuser(ctx, strings.TrimSpace(*email), string(pwd))

	case "addalumni":
		fs := cli.flagSet("addalumni")
		email := fs.String("email", "", "Institutional email, e.g. l123456@lhr.nu.edu.pk")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		a, err := cli.alumni.Add(ctx, *email)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Added %s to the alumni list\n", a.Email)
		return nil

	case "deleteallusers":
		fs := cli.flagSet("deleteallusers")
		yes := fs.Bool("yes", false, "Confirm deleting every user.")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		if !*yes {
			fs.Usage()
			return errHelp
		}
		n, err := cli.users.DeleteAll(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Deleted %d users\n", n)
		return nil

	case "cleartokens":
		n, err := cli.authSvc.PurgeExpiredTokens(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Deleted %d expired refresh tokens\n", n)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) createSuperuser(ctx context.Context, email, password string) error {
	u, err := cli.authSvc.CreateSuperuser(ctx, email, password)
	if err != nil {
		return err
	}
	cli.logger.Info("superuser created", "user_id", u.ID)
	fmt.Fprintf(cli.out, "Superuser %s created\n", u.Email)
	return nil
}

// Command seed prepares a database: it applies migrations, inserts the
// default category catalog and optionally registers a first user.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sebuszqo/ExpenseTracker/internal/config"
	database "github.com/sebuszqo/ExpenseTracker/internal/db"
	applog "github.com/sebuszqo/ExpenseTracker/internal/log"
	"github.com/sebuszqo/ExpenseTracker/internal/user"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := config.Load()

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dbPath := fs.String("db", cfg.DBPath, "Path to the sqlite database file")
	name := fs.String("user", "", "Name of the user to register (optional)")
	email := fs.String("email", "", "Email of the user to register")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	bcryptCost := fs.Int("bcrypt-cost", cfg.BcryptCost, "bcrypt cost used to hash the password")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name != "" && *email == "" {
		fmt.Fprintln(stdout, "Usage: seed [-db <db_path>] [-user <name> -email <email> [-password <password>]]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}

	logger := applog.New(applog.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    stderr,
	})

	ctx := context.Background()
	db, err := database.NewDBService(ctx, database.Options{
		Driver:           database.Driver(cfg.DBDriver),
		Path:             *dbPath,
		ConnectionString: cfg.DBConnectionString,
		BusyTimeout:      cfg.DBBusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	seeded, err := db.SeedDefaultCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	fmt.Fprintf(stdout, "Seeded %d default categories\n", seeded)

	if *name == "" {
		return nil
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	userService := user.NewUserService(user.NewUserRepository(db), *bcryptCost, logger)
	created, err := userService.Register(ctx, *name, *email, password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", created.Email, created.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

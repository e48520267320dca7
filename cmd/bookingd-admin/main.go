// ABOUTME: Admin CLI for bookingd user, teacher, and token management
// ABOUTME: Operates directly on the configured database

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/lotus-studio/bookingd/internal/auth"
	"github.com/lotus-studio/bookingd/internal/config"
	"github.com/lotus-studio/bookingd/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "users":
		err = cmdUsers()
	case "teachers":
		err = cmdTeachers(args)
	case "sessions":
		err = cmdSessions()
	case "token":
		err = cmdToken(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: bookingd-admin <command>

Commands:
  users                         List registered users
  teachers                      List teachers
  teachers add <first> <last>   Create a teacher
  sessions                      List sessions with roster sizes
  token <email> [ttl]           Issue a JWT for an existing user (default ttl 24h)

Config is read from BOOKINGD_CONFIG or ~/.config/bookingd/bookingd.yaml.`)
}

// loadConfig resolves the config the same way the server does.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("BOOKINGD_CONFIG")
	if path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("locating config: %w", err)
			}
			configDir = filepath.Join(homeDir, ".config")
		}
		path = filepath.Join(configDir, "bookingd", "bookingd.yaml")
	}
	return config.Load(path)
}

func openStore() (*store.SQLiteStore, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

func cmdUsers() error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	users, err := st.ListUsers(context.Background())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tFIRST\tLAST\tADMIN\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.Email, u.FirstName, u.LastName, u.Admin, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func cmdTeachers(args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()

	if len(args) > 0 && args[0] == "add" {
		if len(args) != 3 {
			return fmt.Errorf("usage: teachers add <first> <last>")
		}
		teacher := &store.Teacher{FirstName: args[1], LastName: args[2]}
		if err := st.CreateTeacher(ctx, teacher); err != nil {
			return err
		}
		color.Green("Created teacher %d: %s %s\n", teacher.ID, teacher.FirstName, teacher.LastName)
		return nil
	}

	teachers, err := st.ListTeachers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST\tLAST\tCREATED")
	for _, t := range teachers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.FirstName, t.LastName, t.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func cmdSessions() error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	sessions, err := st.ListSessions(context.Background())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDATE\tTEACHER\tPARTICIPANTS")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n", s.ID, s.Name, s.Date.Format(time.RFC3339), s.TeacherID, len(s.Participants))
	}
	return tw.Flush()
}

func cmdToken(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: token <email> [ttl]")
	}
	email := args[0]

	ttl := 24 * time.Hour
	if len(args) > 1 {
		parsed, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("parsing ttl %q: %w", args[1], err)
		}
		ttl = parsed
	}

	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	// Only issue tokens for subjects that actually resolve.
	user, err := st.GetUserByEmail(context.Background(), email)
	if err != nil {
		return fmt.Errorf("looking up %s: %w", email, err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}

	token, err := verifier.Generate(user.Email, ttl)
	if err != nil {
		return err
	}

	color.Green("Token for %s (expires in %s):\n", user.Email, ttl)
	fmt.Println(token)
	return nil
}

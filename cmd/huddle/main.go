package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/huddle/internal/app"
	"github.com/mmcdole/huddle/internal/config"
	"github.com/mmcdole/huddle/internal/domain"
	"github.com/mmcdole/huddle/internal/logging"
	"github.com/mmcdole/huddle/internal/tui"
	"github.com/mmcdole/huddle/internal/tui/styles"
	"github.com/mmcdole/huddle/internal/validate"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

const authTimeout = 90 * time.Second

// errQuit ends the prompt loop without an error
var errQuit = errors.New("quit")

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("huddle %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting huddle", "version", Version)

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	var restored bool
	err = withSpinner("Loading your feed...", func(ctx context.Context) error {
		var err error
		restored, err = a.Start(ctx)
		return err
	})
	if restored && err != nil {
		fmt.Printf("! Some data could not be loaded: %v\n", err)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		if _, ok := a.Session.Current(); !ok {
			if err := promptAuth(reader, a); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}

		loggedOut, err := runTUI(a, logger)
		if err != nil {
			return err
		}
		if !loggedOut {
			logger.Info("shutting down")
			return nil
		}
		fmt.Println("Logged out.")
	}
}

func runTUI(a *app.App, logger *slog.Logger) (bool, error) {
	start := a.Prefs().StartTab
	if start == "" {
		start = a.Config().UI.StartTab
	}

	p := tea.NewProgram(
		tui.NewModel(a, tui.ParseTab(start)),
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")
	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return false, fmt.Errorf("TUI error: %w", err)
	}
	m, ok := final.(tui.Model)
	return ok && m.LoggedOut, nil
}

// promptAuth loops until the user logs in, registers or quits
func promptAuth(reader *bufio.Reader, a *app.App) error {
	fmt.Println()
	fmt.Println("Welcome to huddle!")
	fmt.Println()

	for {
		choice, err := prompt(reader, "[l]og in, [r]egister or [q]uit: ")
		if err != nil {
			return err
		}

		var authErr error
		switch strings.ToLower(choice) {
		case "l", "login":
			authErr = login(reader, a)
		case "r", "register":
			authErr = register(reader, a)
		case "q", "quit":
			return errQuit
		default:
			continue
		}

		if _, ok := a.Session.Current(); ok {
			if authErr != nil {
				fmt.Printf("! Logged in, but some data could not be loaded: %v\n", authErr)
			}
			return nil
		}
		fmt.Printf("✗ %v\n\n", authErr)
	}
}

func login(reader *bufio.Reader, a *app.App) error {
	id, err := prompt(reader, "Username or phone: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	creds := domain.Credentials{Password: password}
	if looksLikePhone(id) {
		creds.Phone = id
	} else {
		creds.Username = id
	}

	return withSpinner("Logging in...", func(ctx context.Context) error {
		_, err := a.Login(ctx, creds)
		return err
	})
}

func register(reader *bufio.Reader, a *app.App) error {
	var creds domain.Credentials
	var err error

	fields := []struct {
		label string
		dest  *string
	}{
		{"Full name: ", &creds.FullName},
		{"Username: ", &creds.Username},
		{"Email: ", &creds.Email},
		{"Phone (optional): ", &creds.Phone},
	}
	for _, f := range fields {
		if *f.dest, err = prompt(reader, f.label); err != nil {
			return err
		}
	}

	birth, err := prompt(reader, "Birth date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	if birth != "" {
		creds.BirthDate, err = time.Parse(time.DateOnly, birth)
		if err != nil {
			return &domain.ValidationError{Field: "birth_date", Reason: "use YYYY-MM-DD"}
		}
	}

	confirm, err := prompt(reader, agePrompt())
	if err != nil {
		return err
	}
	creds.AgeConfirmed = isYes(confirm)

	if creds.Password, err = promptPassword("Password: "); err != nil {
		return err
	}

	return withSpinner("Creating account...", func(ctx context.Context) error {
		_, err := a.Register(ctx, creds)
		return err
	})
}

// agePrompt asks for the same confirmation validate.Registration requires
func agePrompt() string {
	return fmt.Sprintf("I am %d or older and accept the terms [y/N]: ", validate.MinAge)
}

func isYes(answer string) bool {
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

// promptPassword reads a password with echo disabled
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // Add newline after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(passwordBytes), nil
}

func looksLikePhone(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune("+0123456789 -()", r) {
			return false
		}
	}
	return true
}

// withSpinner runs fn while animating a spinner
func withSpinner(label string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- fn(ctx)
	}()

	frame := 0
	fmt.Printf("\r%s %s", styles.SpinnerFrames[frame], label)

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-resultCh:
			fmt.Print(clearSpinnerLine)
			return err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s %s", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)], label)
		}
	}
}

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/hay-kot/storefront/internal/core/validate"
	"github.com/hay-kot/storefront/internal/styles"
)

// credentialFields are the values collected by the login and register forms.
// Fields that already hold a value are not prompted for.
type credentialFields struct {
	Name     *string
	Email    *string
	Password *string
}

// isInteractive reports whether stdin is a terminal.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptCredentials fills in missing fields with a huh form. Without a
// terminal it fails and names the flag to use instead.
func promptCredentials(title string, fields credentialFields) error {
	var inputs []huh.Field

	if fields.Name != nil && *fields.Name == "" {
		inputs = append(inputs, huh.NewInput().
			Title("Name").
			Value(fields.Name).
			Validate(required("name")))
	}

	if fields.Email != nil && *fields.Email == "" {
		inputs = append(inputs, huh.NewInput().
			Title("Email").
			Value(fields.Email).
			Validate(validate.Email))
	}

	if fields.Password != nil && *fields.Password == "" {
		inputs = append(inputs, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(fields.Password).
			Validate(required("password")))
	}

	if len(inputs) == 0 {
		return nil
	}

	if !isInteractive() {
		return errors.New("missing credentials (stdin is not a terminal); use --email and --password")
	}

	form := huh.NewForm(huh.NewGroup(inputs...).Title(title)).WithTheme(styles.FormTheme())
	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt: %w", err)
	}

	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

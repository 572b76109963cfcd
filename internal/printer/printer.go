// Package printer writes human-facing output for the shop commands. Colors
// come from the styles palette and are dropped when the writer is not a
// terminal.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hay-kot/criterio"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/hay-kot/storefront/internal/api"
	"github.com/hay-kot/storefront/internal/core/session"
	"github.com/hay-kot/storefront/internal/core/wishlist"
	"github.com/hay-kot/storefront/internal/styles"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
	Heart = "♥"
)

type ctxKey struct{}

// Printer renders messages, error boxes and doctor items to a writer.
type Printer struct {
	w io.Writer
	r *lipgloss.Renderer

	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	bold    lipgloss.Style
	section lipgloss.Style
}

// New creates a Printer whose color profile is detected from w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		r:       r,
		ok:      r.NewStyle().Foreground(styles.ColorGreen),
		warn:    r.NewStyle().Foreground(styles.ColorYellow),
		fail:    r.NewStyle().Foreground(styles.ColorRed),
		muted:   styles.MutedStyle.Renderer(r),
		bold:    r.NewStyle().Bold(true),
		section: r.NewStyle().Bold(true).Underline(true),
	}
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates one on stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.w, s+"\n")
}

// FatalError prints err in a box titled after what went wrong. It does not
// exit; the caller picks the exit code.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.box("Validation Error", validationLines(err, fieldErrs, p.fail.Render(Cross)), "")
		return
	}

	title, hint := describe(err)
	p.box(title, []string{p.muted.Render(err.Error())}, hint)
}

// describe maps the storefront's error kinds to a box title and an optional
// next step for the user.
func describe(err error) (title, hint string) {
	switch {
	case errors.Is(err, api.ErrBanned):
		return "Account banned", ""
	case errors.Is(err, wishlist.ErrAuthRequired):
		return "Sign in required", "run 'shop login' first"
	case errors.Is(err, session.ErrAuth):
		return "Sign-in failed", ""
	case errors.Is(err, api.ErrNetwork):
		return "Store unreachable", "check api.base_url with 'shop doctor'"
	default:
		return "Error", ""
	}
}

// validationLines renders one line per field error, preceded by whatever
// context wraps the field errors (e.g. "load config: invalid config").
func validationLines(wrapped error, fieldErrs criterio.FieldErrors, mark string) []string {
	var lines []string

	errStr, fieldStr := wrapped.Error(), fieldErrs.Error()
	if idx := strings.Index(errStr, fieldStr); idx > 0 {
		lines = append(lines, strings.TrimSuffix(errStr[:idx], ": "), "")
	}

	for _, fe := range fieldErrs {
		line := mark + " "
		if fe.Field != "" {
			line += fe.Field + ": "
		}
		lines = append(lines, line+fe.Err.Error())
	}
	return lines
}

func (p *Printer) box(title string, lines []string, hint string) {
	bar := p.fail.Render("│")

	p.line(p.fail.Render("╭ " + title))
	for _, l := range lines {
		if l == "" {
			p.line(bar)
			continue
		}
		p.line(bar + " " + l)
	}
	if hint != "" {
		p.line(bar + " " + p.muted.Render("hint: "+hint))
	}
	p.line(p.fail.Render("╵"))
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.fail.Render(Cross + " " + fmt.Sprintf(format, args...)))
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.ok.Render(Check + " " + fmt.Sprintf(format, args...)))
}

// Success prints a success message with details on a separate line
func (p *Printer) Success(message string, details string) {
	p.line(p.ok.Render(Check + " " + message))
	if details != "" {
		p.line("  " + p.muted.Render(details))
	}
}

// Infof prints a muted informational message.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.muted.Render(Dot + " " + fmt.Sprintf(format, args...)))
}

// Warnf prints a warning message in yellow
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.warn.Render(Dot + " " + fmt.Sprintf(format, args...)))
}

// Printf prints a plain message.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Bold returns text in bold when the writer supports it.
func (p *Printer) Bold(text string) string {
	return p.bold.Render(text)
}

// Section prints a section header.
func (p *Printer) Section(title string) {
	p.line(p.section.Render(title))
}

// CheckItem prints a passing doctor item.
func (p *Printer) CheckItem(label, detail string) {
	p.item(p.ok, Check, label, detail)
}

// WarnItem prints a doctor item that needs attention.
func (p *Printer) WarnItem(label, detail string) {
	p.item(p.warn, Dot, label, detail)
}

// FailItem prints a failing doctor item.
func (p *Printer) FailItem(label, detail string) {
	p.item(p.fail, Cross, label, detail)
}

func (p *Printer) item(style lipgloss.Style, symbol, label, detail string) {
	l := "  " + style.Render(symbol) + " " + label
	if detail != "" {
		l += ": " + detail
	}
	p.line(l)
}

// Banned prints the notice shown after the server bans the account.
func (p *Printer) Banned(route, message string) {
	body := styles.BannedTitleStyle.Renderer(p.r).Render("Account banned") + "\n" +
		message + "\n" +
		p.muted.Render("You have been signed out ("+route+").")

	p.line(styles.BannedStyle.Renderer(p.r).Render(body))
}

// Money formats amount in unit with the currency's narrow symbol and
// standard number of decimals, e.g. "$ 1234.50". The digits come from the
// decimal itself so large totals stay exact.
func Money(amount decimal.Decimal, unit currency.Unit) string {
	scale, _ := currency.Standard.Rounding(unit)
	symbol := fmt.Sprint(currency.NarrowSymbol(unit))
	return symbol + " " + amount.Round(int32(scale)).StringFixed(int32(scale))
}

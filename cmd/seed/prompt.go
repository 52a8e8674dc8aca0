package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/Annany2002/nebula-seeder/internal/auth"
	"github.com/Annany2002/nebula-seeder/internal/dataverse"
	"github.com/Annany2002/nebula-seeder/internal/domain"
	"github.com/Annany2002/nebula-seeder/internal/generation"
	"github.com/Annany2002/nebula-seeder/internal/seeder"
)

// prompter reads answers line by line. When stdin is a terminal, readSecret
// is set and secret answers are read without echo.
type prompter struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() ([]byte, error)
}

func newPrompter(stdin *os.File, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(stdin), out: out}
	fd := int(stdin.Fd())
	if term.IsTerminal(fd) {
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// ask prints label and returns the trimmed answer. A final line without a
// newline is accepted.
func (p *prompter) ask(label string, secret bool) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	if secret && p.readSecret != nil {
		answer, err := p.readSecret()
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("%s: %w", label, err)
		}
		return strings.TrimSpace(string(answer)), nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("%s: %w", label, err)
	}
	return strings.TrimSpace(line), nil
}

// promptInput asks for the seven run inputs. The resource URL is the org URL.
func promptInput(p *prompter) (seeder.Input, error) {
	questions := []struct {
		label  string
		secret bool
	}{
		{"LLM API key", true},
		{"Tenant ID", true},
		{"Client ID", true},
		{"Client secret", true},
		{"Organization URL", false},
		{"Collection name (e.g. accounts)", false},
		{"Row count", false},
	}
	answers := make([]string, len(questions))
	for i, q := range questions {
		answer, err := p.ask(q.label, q.secret)
		if err != nil {
			return seeder.Input{}, err
		}
		answers[i] = answer
	}

	rowCount, err := strconv.Atoi(answers[6])
	if err != nil {
		return seeder.Input{}, &seeder.ValidationError{Field: "row_count", Reason: "must be an integer"}
	}

	return seeder.Input{
		Credentials: domain.Credentials{
			TenantID:     answers[1],
			ClientID:     answers[2],
			ClientSecret: answers[3],
			ResourceURL:  answers[4],
		},
		OrgURL:         answers[4],
		CollectionName: answers[5],
		RowCount:       rowCount,
		APIKey:         answers[0],
	}, nil
}

// runHash reads a password and prints its bcrypt hash for OPERATOR_PASSWORD_HASH.
func runHash(p *prompter) error {
	password, err := p.ask("Operator password", true)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password must not be empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, hash)
	return nil
}

// report prints a run failure the way an operator needs to read it.
func report(w io.Writer, err error) {
	var (
		submissionErr *dataverse.SubmissionError
		authErr       *auth.AuthenticationError
		formatErr     *generation.GenerationFormatError
	)
	switch {
	case errors.As(err, &submissionErr):
		fmt.Fprintf(w, "Batch request failed. Status code: %d\n", submissionErr.StatusCode)
		fmt.Fprintf(w, "Response content: %s\n", submissionErr.Body)
	case errors.As(err, &authErr):
		fmt.Fprintf(w, "Authentication failed (status %d): %s\n", authErr.StatusCode, authErr.Body)
	case errors.As(err, &formatErr):
		fmt.Fprintf(w, "Generated data could not be used: %s\n%s\n", formatErr.Reason, formatErr.Output)
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

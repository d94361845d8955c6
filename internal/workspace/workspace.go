// Package workspace edits the member list of a Cargo workspace manifest.
//
// The list is located textually inside the [workspace] table and rewritten in
// place; every line outside the assignment stays byte-for-byte intact.
// Trailing comments on the first and last line of the assignment are carried
// over, but comment lines inside a multi-line list are dropped. Lists of at
// most two entries are written on one line:
//
//	members = ["core", "sideko"]
//
// Longer lists are written one entry per line, indented four spaces past the
// key:
//
//	members = [
//	    "core",
//	    "sideko",
//	    "sideko-py",
//	]
package workspace

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// singleLineMax is the largest member count rendered on a single line.
const singleLineMax = 2

// ErrMembersNotFound is returned when no members list exists in the
// [workspace] table.
var ErrMembersNotFound = errors.New("could not find members section in workspace manifest")

var quotedPattern = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)

// Section locates the members assignment within a manifest.
type Section struct {
	// Start and End are the inclusive line indexes of the assignment.
	Start int
	End   int
	// Indent is the leading whitespace of the `members` key line.
	Indent string
	// Members are the entries in file order.
	Members []string
}

// FindMembers locates the members list of the [workspace] table in content.
// Both the single-line bracketed form and the multi-line form are accepted;
// comments inside the list are ignored.
func FindMembers(content string) (*Section, error) {
	lines := splitLines(content)
	inWorkspace := false

	for i, line := range lines {
		code := strings.TrimSpace(stripComment(line))
		if strings.HasPrefix(code, "[") && !strings.Contains(code, "=") {
			inWorkspace = tableName(code) == "workspace"
			continue
		}
		if !inWorkspace || !isMembersKey(code) {
			continue
		}
		return scanList(lines, i)
	}

	return nil, ErrMembersNotFound
}

// scanList reads the list value starting at the key line, following brackets
// across lines until the list closes.
func scanList(lines []string, start int) (*Section, error) {
	var body strings.Builder
	depth := 0

	for j := start; j < len(lines); j++ {
		code := stripComment(lines[j])
		if j == start {
			code = code[strings.Index(code, "=")+1:]
		}
		depth += bracketDelta(code)
		body.WriteString(code)
		body.WriteByte('\n')

		if depth <= 0 {
			return &Section{
				Start:   start,
				End:     j,
				Indent:  leadingSpace(lines[start]),
				Members: parseEntries(body.String()),
			}, nil
		}
	}

	return nil, fmt.Errorf("members list starting on line %d is never closed", start+1)
}

// Toggle adds (present=true) or removes (present=false) member in the
// workspace members list of content and returns the rewritten manifest.
// When membership already matches, content is returned unchanged.
func Toggle(content, member string, present bool) (string, error) {
	section, err := FindMembers(content)
	if err != nil {
		return "", err
	}

	next := nextMembers(section.Members, member, present)
	if slices.Equal(next, section.Members) {
		return content, nil
	}

	lines := splitLines(content)
	rewritten := make([]string, 0, len(lines)+len(next))
	rewritten = append(rewritten, lines[:section.Start]...)
	rewritten = append(rewritten, keepComments(Render(section.Indent, next), lines, section)...)
	rewritten = append(rewritten, lines[section.End+1:]...)

	updated := strings.Join(rewritten, "\n")
	if strings.HasSuffix(content, "\n") {
		updated += "\n"
	}

	if err := verify(content, updated, next); err != nil {
		return "", err
	}
	return updated, nil
}

// Render formats a members assignment at the given indentation.
func Render(indent string, members []string) []string {
	if len(members) <= singleLineMax {
		quoted := make([]string, len(members))
		for i, m := range members {
			quoted[i] = `"` + m + `"`
		}
		return []string{indent + "members = [" + strings.Join(quoted, ", ") + "]"}
	}

	out := make([]string, 0, len(members)+2)
	out = append(out, indent+"members = [")
	for _, m := range members {
		out = append(out, indent+`    "`+m+`",`)
	}
	return append(out, indent+"]")
}

// keepComments appends the trailing comments of the assignment's opening and
// closing lines to the rendered lines.
func keepComments(rendered, lines []string, section *Section) []string {
	if c := trailingComment(lines[section.Start]); c != "" {
		rendered[0] += " " + c
	}
	if section.End != section.Start {
		if c := trailingComment(lines[section.End]); c != "" {
			rendered[len(rendered)-1] += " " + c
		}
	}
	return rendered
}

func trailingComment(line string) string {
	return strings.TrimSpace(line[len(stripComment(line)):])
}

// Contains reports whether the members list of content includes member.
func Contains(content, member string) (bool, error) {
	section, err := FindMembers(content)
	if err != nil {
		return false, err
	}
	return slices.Contains(section.Members, member), nil
}

func nextMembers(current []string, member string, present bool) []string {
	if present {
		if slices.Contains(current, member) {
			return current
		}
		return append(slices.Clone(current), member)
	}
	return slices.DeleteFunc(slices.Clone(current), func(m string) bool { return m == member })
}

// verify decodes the rewritten manifest and checks the members list round
// trips. Manifests that were not valid TOML to begin with are not checked.
func verify(before, after string, want []string) error {
	var original manifestFile
	if _, err := toml.Decode(before, &original); err != nil {
		return nil //nolint:nilerr // unparseable input is rewritten textually only
	}

	var decoded manifestFile
	if _, err := toml.Decode(after, &decoded); err != nil {
		return fmt.Errorf("rewritten workspace manifest is not valid TOML: %w", err)
	}
	if !slices.Equal(decoded.Workspace.Members, want) {
		return fmt.Errorf("rewritten members %v, want %v", decoded.Workspace.Members, want)
	}
	return nil
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func parseEntries(body string) []string {
	var members []string
	for _, m := range quotedPattern.FindAllStringSubmatch(body, -1) {
		entry := m[1]
		if entry == "" {
			entry = m[2]
		}
		if entry != "" {
			members = append(members, entry)
		}
	}
	return members
}

func isMembersKey(code string) bool {
	rest, ok := strings.CutPrefix(code, "members")
	return ok && strings.HasPrefix(strings.TrimSpace(rest), "=")
}

func tableName(header string) string {
	return strings.TrimSpace(strings.Trim(header, "[] \t"))
}

func leadingSpace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// stripComment drops a trailing # comment that is not inside a string.
func stripComment(line string) string {
	var quote rune
	for i, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '#':
			return line[:i]
		}
	}
	return line
}

// bracketDelta counts opening minus closing brackets outside strings.
func bracketDelta(code string) int {
	var quote rune
	delta := 0
	for _, r := range code {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[':
			delta++
		case r == ']':
			delta--
		}
	}
	return delta
}

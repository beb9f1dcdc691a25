// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// optionalSuffix marks an env file that may be missing.
const optionalSuffix = "?"

// LoadEnvFile reads a dotenv file and merges it into env. Relative paths are
// resolved against baseDir. A trailing '?' makes the file optional.
func LoadEnvFile(env map[string]string, path, baseDir string) error {
	name, optional := strings.CutSuffix(path, optionalSuffix)

	full := filepath.FromSlash(name)
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, full)
	}

	content, err := os.ReadFile(full)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %q: %w", name, err)
	}

	return ParseEnvFile(env, content, name)
}

// ParseEnvFile merges dotenv content into env. The accepted syntax is:
//
//	# comment
//	KEY=value            unquoted, " #" starts an inline comment
//	KEY="a\tb"           double-quoted, \n \r \t \\ \" \$ escapes
//	KEY='literal'        single-quoted, no escapes
//	export KEY=value     the export keyword is ignored
//	KEY=                 empty value
//
// filename only appears in error messages.
func ParseEnvFile(env map[string]string, content []byte, filename string) error {
	sc := bufio.NewScanner(bytes.NewReader(content))
	lineNum := 0
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(strings.TrimSuffix(sc.Text(), "\r"))
		if line == "" || line[0] == '#' {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "export "); ok {
			line = strings.TrimSpace(rest)
		}

		key, raw, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: invalid format (missing '=')", filename, lineNum)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty variable name", filename, lineNum)
		}

		value, err := envValue(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineNum, err)
		}
		env[key] = value
	}
	return sc.Err()
}

func envValue(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	switch quote := raw[0]; quote {
	case '"', '\'':
		if len(raw) < 2 || raw[len(raw)-1] != quote {
			if quote == '"' {
				return "", errors.New("unterminated double quote")
			}
			return "", errors.New("unterminated single quote")
		}
		inner := raw[1 : len(raw)-1]
		if quote == '\'' {
			return inner, nil
		}
		return unescape(inner), nil
	}

	if before, _, ok := strings.Cut(raw, " #"); ok {
		return strings.TrimSpace(before), nil
	}
	return raw, nil
}

var escapes = map[byte]byte{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'\\': '\\',
	'"':  '"',
	'$':  '$',
}

// unescape resolves backslash escapes; unknown escapes are kept verbatim.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		if r, ok := escapes[s[i+1]]; ok {
			b.WriteByte(r)
		} else {
			b.WriteByte('\\')
			b.WriteByte(s[i+1])
		}
		i++
	}
	return b.String()
}

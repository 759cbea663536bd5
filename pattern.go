package hsafgrib

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FilePattern matches file names against a trollsift-style pattern such as
//
//	h05B_{sensing_time:%Y%m%d_%H%M}_{accum_time:2s}_{region:3s}.grb
//
// Fields are written {name} or {name:spec}. A spec starting with % is a
// strftime time layout and yields a time.Time in UTC; "Ns" is a string of
// exactly N characters; "d" and "Nd" are integers. Fields without a spec
// match lazily.
type FilePattern struct {
	pattern string
	re      *regexp.Regexp
	fields  []patternField
}

type patternField struct {
	name   string
	kind   byte // 's', 'd' or 't'
	layout string
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CompilePattern parses a file pattern.
func CompilePattern(pattern string) (*FilePattern, error) {
	fp := &FilePattern{pattern: pattern}
	var re strings.Builder
	re.WriteByte('^')
	seen := map[string]bool{}
	rest := pattern
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			re.WriteString(regexp.QuoteMeta(rest))
			break
		}
		re.WriteString(regexp.QuoteMeta(rest[:open]))
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("pattern %q: unclosed field", pattern)
		}
		field := rest[open+1 : open+end]
		rest = rest[open+end+1:]

		name, spec, _ := strings.Cut(field, ":")
		if !fieldName.MatchString(name) {
			return nil, fmt.Errorf("pattern %q: invalid field name %q", pattern, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("pattern %q: field %q repeated", pattern, name)
		}
		seen[name] = true

		f := patternField{name: name, kind: 's'}
		var expr string
		switch {
		case spec == "" || spec == "s":
			expr = ".+?"
		case strings.HasPrefix(spec, "%"):
			layout, e, err := strftime(spec)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: field %q: %w", pattern, name, err)
			}
			f.kind, f.layout, expr = 't', layout, e
		case strings.HasSuffix(spec, "s") || strings.HasSuffix(spec, "d"):
			f.kind = spec[len(spec)-1]
			class := "."
			if f.kind == 'd' {
				class = `\d`
			}
			if width := spec[:len(spec)-1]; width == "" {
				expr = class + "+"
			} else {
				n, err := strconv.Atoi(width)
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("pattern %q: field %q: bad width %q", pattern, name, width)
				}
				expr = fmt.Sprintf("%s{%d}", class, n)
			}
		default:
			return nil, fmt.Errorf("pattern %q: field %q: unsupported spec %q", pattern, name, spec)
		}
		fmt.Fprintf(&re, "(?P<%s>%s)", name, expr)
		fp.fields = append(fp.fields, f)
	}
	re.WriteByte('$')

	var err error
	if fp.re, err = regexp.Compile(re.String()); err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return fp, nil
}

// strftimeDirectives maps the strftime directives file names use to Go
// layout elements and the digits they match.
var strftimeDirectives = map[byte]struct {
	layout string
	expr   string
}{
	'Y': {"2006", `\d{4}`},
	'y': {"06", `\d{2}`},
	'm': {"01", `\d{2}`},
	'd': {"02", `\d{2}`},
	'j': {"002", `\d{3}`},
	'H': {"15", `\d{2}`},
	'M': {"04", `\d{2}`},
	'S': {"05", `\d{2}`},
}

func strftime(spec string) (layout, expr string, err error) {
	var lb, eb strings.Builder
	for i := 0; i < len(spec); i++ {
		c := spec[i]
		if c != '%' {
			lb.WriteByte(c)
			eb.WriteString(regexp.QuoteMeta(string(c)))
			continue
		}
		i++
		if i == len(spec) {
			return "", "", fmt.Errorf("dangling %% in %q", spec)
		}
		d, ok := strftimeDirectives[spec[i]]
		if !ok {
			return "", "", fmt.Errorf("unsupported directive %%%c", spec[i])
		}
		lb.WriteString(d.layout)
		eb.WriteString(d.expr)
	}
	return lb.String(), eb.String(), nil
}

// String returns the pattern text.
func (p *FilePattern) String() string { return p.pattern }

// Match parses name, a file base name, and reports whether it matches.
func (p *FilePattern) Match(name string) (FilenameInfo, bool) {
	sub := p.re.FindStringSubmatch(name)
	if sub == nil {
		return nil, false
	}
	info := make(FilenameInfo, len(p.fields))
	for i, f := range p.fields {
		s := sub[i+1]
		switch f.kind {
		case 't':
			t, err := time.Parse(f.layout, s)
			if err != nil {
				return nil, false
			}
			info[f.name] = t
		case 'd':
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, false
			}
			info[f.name] = n
		default:
			info[f.name] = s
		}
	}
	return info, true
}

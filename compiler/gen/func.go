package gen

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// Funcs are the naming helpers available to every template set.
	Funcs = template.FuncMap{
		"snake":     Snake,
		"pascal":    Pascal,
		"camel":     Camel,
		"plural":    Plural,
		"singular":  Singular,
		"title":     Title,
		"receiver":  Receiver,
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"join":      strings.Join,
		"quote":     strconv.Quote,
		"hasPrefix": strings.HasPrefix,
		"add":       add,
		"xrange":    xrange,
		"dict":      dict,
		"list":      list,
		"fail":      fail,
	}

	rules    = ruleset()
	acronyms = make(map[string]struct{})
	titler   = cases.Title(language.English)
	mu       sync.RWMutex
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HCL", "HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB", "LHS", "MAC",
		"MB", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP", "SQL", "SSH", "SSO",
		"TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID",
		"VM", "XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// AddAcronym adds a new acronym to the naming rules.
func AddAcronym(word string) {
	mu.Lock()
	defer mu.Unlock()
	acronyms[word] = struct{}{}
	rules.AddAcronym(word)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

func pascalWords(words []string) string {
	mu.RLock()
	defer mu.RUnlock()
	for i, w := range words {
		upper := strings.ToUpper(w)
		if _, ok := acronyms[upper]; ok {
			words[i] = upper
		} else {
			words[i] = rules.Capitalize(w)
		}
	}
	return strings.Join(words, "")
}

// Pascal converts the given name into a PascalCase.
//
//	user_info 	=> UserInfo
//	full_name 	=> FullName
//	user_id   	=> UserID
//	full-admin	=> FullAdmin
func Pascal(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	return pascalWords(words)
}

// Camel converts the given name into a camelCase.
//
//	user_info  => userInfo
//	full_name  => fullName
//	user_id    => userID
//	full-admin => fullAdmin
func Camel(s string) string {
	words := strings.FieldsFunc(s, isSeparator)
	if len(words) == 0 {
		return ""
	}
	first := words[0]
	if len(words) == 1 {
		if isUpperWord(first) {
			return strings.ToLower(first)
		}
		return strings.ToLower(first[:1]) + first[1:]
	}
	if isUpperWord(first) {
		first = strings.ToLower(first)
	} else {
		first = strings.ToLower(first[:1]) + first[1:]
	}
	return first + pascalWords(words[1:])
}

func isUpperWord(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func Snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Plural returns the plural form of the given word. Words the rules
// consider uncountable are returned unchanged.
func Plural(s string) string {
	mu.RLock()
	defer mu.RUnlock()
	return rules.Pluralize(s)
}

// Singular returns the singular form of the given word.
func Singular(s string) string {
	mu.RLock()
	defer mu.RUnlock()
	return rules.Singularize(s)
}

// Title returns the humanized, title cased form of a name.
//
//	ResearchEvent  => Research Event
//	is_authored_by => Is Authored By
func Title(s string) string {
	return titler.String(strings.ReplaceAll(Snake(s), "_", " "))
}

// Receiver returns the receiver name of the given type.
//
//	[]T       => t
//	[1]T      => t
//	User      => u
//	UserQuery => uq
func Receiver(s string) string {
	s = strings.Trim(s, "[]*&0123456789")
	var b strings.Builder
	for _, w := range strings.Split(Snake(s), "_") {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	name := strings.ToLower(b.String())
	if token.Lookup(name).IsKeyword() {
		name = "_" + name
	}
	return name
}

// add calculates summarization of the given integers.
func add(xs ...int) (n int) {
	for _, x := range xs {
		n += x
	}
	return
}

// xrange generates a slice of len n.
func xrange(n int) (a []int) {
	for i := range n {
		a = append(a, i)
	}
	return
}

// dict creates a dictionary from a list of pairs.
func dict(v ...any) map[string]any {
	lenv := len(v)
	dict := make(map[string]any, lenv/2)
	for i := 0; i < lenv; i += 2 {
		key := fmt.Sprint(v[i])
		if i+1 >= lenv {
			dict[key] = ""
			continue
		}
		dict[key] = v[i+1]
	}
	return dict
}

// list creates a list from the given arguments.
func list(v ...any) []any {
	return v
}

// fail unconditionally returns an error, aborting template execution.
func fail(msg string) (string, error) {
	return "", errors.New(msg)
}

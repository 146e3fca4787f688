// Package pathformat expands the editor's path templates into storage keys.
//
// Supported tokens:
//
//	{yyyy}     four-digit year
//	{yy}       last two digits of the year
//	{mm}       month, zero padded
//	{dd}       day, zero padded
//	{hh}       hour, zero padded
//	{ii}       minute, zero padded
//	{ss}       second, zero padded
//	{time}     unix time in milliseconds
//	{filename} original file name without extension
//	{rand:N}   N random lowercase letters
//
// Tokens are replaced in a single left-to-right pass. Substituted text is not
// scanned again, so an original file name such as "{yyyy}.png" is kept literally
// by {filename}. There is no way to escape a literal token in the template itself.
package pathformat

import (
	"math/rand/v2"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tokenPattern = regexp.MustCompile(`\{(yyyy|yy|mm|dd|hh|ii|ss|time|filename|rand:[0-9]+)\}`)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Engine expands path templates. The zero value is not usable, call New.
type Engine struct {
	now       func() time.Time
	safeNames bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source. Useful for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSafeFilenames makes {filename} replace characters that are invalid in
// file names on common filesystems, : * ? " < > | and control characters,
// with an underscore.
func WithSafeFilenames() Option {
	return func(e *Engine) {
		e.safeNames = true
	}
}

// New creates an Engine using the local wall clock.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand substitutes every token in tmpl and appends ext.
// ext is used verbatim and is expected to carry its leading dot.
//
// Example:
//
//	key := engine.Expand("storage/image/{yyyy}{mm}{dd}/{time}{rand:6}", "photo.png", ".png")
//	// storage/image/20240305/1709600000000qwerty.png
func (e *Engine) Expand(tmpl, originalName, ext string) string {
	t := e.now()
	name := baseName(originalName)
	if e.safeNames {
		name = safeName(name)
	}

	expanded := tokenPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		switch token = token[1 : len(token)-1]; token {
		case "yyyy":
			return strconv.Itoa(t.Year())
		case "yy":
			y := strconv.Itoa(t.Year())
			return y[len(y)-2:]
		case "mm":
			return pad(int(t.Month()))
		case "dd":
			return pad(t.Day())
		case "hh":
			return pad(t.Hour())
		case "ii":
			return pad(t.Minute())
		case "ss":
			return pad(t.Second())
		case "time":
			return strconv.FormatInt(t.UnixMilli(), 10)
		case "filename":
			return name
		default:
			n, err := strconv.Atoi(strings.TrimPrefix(token, "rand:"))
			if err != nil {
				return ""
			}
			return Random(n)
		}
	})

	return expanded + ext
}

// Random returns n pseudo-random lowercase ASCII letters.
// Not suitable for anything security sensitive.
func Random(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// baseName strips directory components and the extension so {filename}
// cannot introduce extra path segments.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package wiring

import (
	"strings"
	"unicode"

	"github.com/db47h/moccarduino/internal/lex"
)

// Tokens recognized in a connection string such as "led[0..7]=2,3,4,5,6,7,8,9"
// or "button=A0".
const (
	tEOF lex.Type = lex.EOF
	tRaw lex.Type = iota
	tIdent
	tBracketOpen
	tBracketClose
	tComma
	tInt
	tDotDot
	tEqual
)

// lexer returns a lexer over a single connection string.
func lexer(input string) lex.Interface {
	return lex.New(strings.NewReader(input), lexInit)
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.RuneEOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r) || r == '_':
		return lexIdent
	case r == '[':
		l.Emit(tBracketOpen, "[")
	case r == ']':
		l.Emit(tBracketClose, "]")
	case r == ',':
		l.Emit(tComma, ",")
	case '0' <= r && r <= '9':
		return lexNumber
	case r == '=':
		l.Emit(tEqual, "=")
	case r == '.':
		n := l.Next()
		if n == '.' {
			l.Emit(tDotDot, "..")
			break
		}
		l.Backup()
		fallthrough
	default:
		l.Emit(tRaw, string(r))
		return lexEOF
	}
	return nil
}

func lexNumber(l *lex.Lexer) lex.StateFn {
	i := int(l.Current() - '0')
	r := l.Next()
	for '0' <= r && r <= '9' {
		i = i*10 + int(r-'0')
		r = l.Next()
	}
	l.Backup()
	l.Emit(tInt, i)
	return nil
}

func lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	r := l.Next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(tIdent, buf.String())
	return nil
}

// lexEOF places the lexer in end-of-file state: once entered, only EOF items
// are emitted.
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(lex.EOF, "end of input")
	return lexEOF
}

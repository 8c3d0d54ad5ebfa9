package ycc

// TokenStream is a cursor over a lexed token sequence.
type TokenStream struct {
	tokens []Tok
	idx    int
}

func newTokenStream(tokens []Tok) *TokenStream {
	return &TokenStream{tokens: tokens}
}

func (s *TokenStream) atEnd() bool {
	return s.idx >= len(s.tokens)
}

func (s *TokenStream) endErr() error {
	if len(s.tokens) > 0 {
		return errorf(ErrParse, "unexpected end of input after %s", s.tokens[len(s.tokens)-1])
	}
	return errorf(ErrParse, "unexpected end of input")
}

func (s *TokenStream) peek() (Tok, error) {
	if s.atEnd() {
		return Tok{}, s.endErr()
	}
	return s.tokens[s.idx], nil
}

func (s *TokenStream) advance() (Tok, error) {
	tok, err := s.peek()
	if err != nil {
		return Tok{}, err
	}
	s.idx++
	return tok, nil
}

// peekIs reports whether the next token is the given bracket, operator
// or keyword. It is false at end of input.
func (s *TokenStream) peekIs(text string) bool {
	if s.atEnd() {
		return false
	}
	tok := s.tokens[s.idx]
	return tok.text == text && tok.kind != Literal && tok.kind != Identifier
}

// expect consumes the next token, which must be the bracket, operator or
// keyword spelled text.
func (s *TokenStream) expect(text string) (Tok, error) {
	tok, err := s.advance()
	if err != nil {
		return Tok{}, errorf(ErrParse, "expected '%s' but input ended", text)
	}
	if tok.text != text || tok.kind == Literal || tok.kind == Identifier {
		return Tok{}, errorf(ErrParse, "expected '%s' but found %s", text, tok)
	}
	return tok, nil
}

func (s *TokenStream) expectKind(kind Kind) (Tok, error) {
	tok, err := s.advance()
	if err != nil {
		return Tok{}, errorf(ErrParse, "expected %s but input ended", kind)
	}
	if tok.kind != kind {
		return Tok{}, errorf(ErrParse, "expected %s but found %s", kind, tok)
	}
	return tok, nil
}

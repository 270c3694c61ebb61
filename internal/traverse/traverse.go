// Package traverse resolves command-line path tokens against the API resource
// tree.
package traverse

import (
	"fmt"
	"strings"

	"github.com/rstorcloud/alfredo/pkg/ruote"
)

// UnknownPathError reports the first token that failed to resolve, along with
// the tokens successfully consumed before it.
type UnknownPathError struct {
	Token    string
	Consumed []string
	Err      error
}

func (e *UnknownPathError) Error() string {
	if len(e.Consumed) == 0 {
		return fmt.Sprintf("unknown path token '%s': %v", e.Token, e.Err)
	}
	return fmt.Sprintf("unknown path token '%s' after '%s': %v",
		e.Token, strings.Join(e.Consumed, " "), e.Err)
}

func (e *UnknownPathError) Unwrap() error {
	return e.Err
}

// Path walks tokens down from root, one resource per token, and returns the
// final resource. An empty token list resolves to root itself. Resolution
// stops at the first token that fails; nothing is returned for the partial
// prefix.
func Path(root ruote.Resource, tokens []string) (ruote.Resource, error) {
	current := root
	for i, tok := range tokens {
		next, err := child(current, tok)
		if err != nil {
			return nil, &UnknownPathError{
				Token:    tok,
				Consumed: append([]string(nil), tokens[:i]...),
				Err:      err,
			}
		}
		current = next
	}
	return current, nil
}

// child resolves one token. A token shaped name:value tries a keyed lookup
// first; every keyed failure, capability or otherwise, retries the whole
// token as a plain name.
func child(current ruote.Resource, tok string) (ruote.Resource, error) {
	if kind, key, ok := splitKeyed(tok); ok {
		if next, err := current.ChildByKey(kind, key); err == nil {
			return next, nil
		}
	}
	return current.Child(tok)
}

// splitKeyed splits a token at its first colon. Both halves must be
// non-empty; the value half may itself contain colons.
func splitKeyed(tok string) (kind, key string, ok bool) {
	i := strings.Index(tok, ":")
	if i <= 0 || i == len(tok)-1 {
		return "", "", false
	}
	return tok[:i], tok[i+1:], true
}

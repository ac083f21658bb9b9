package domain

import (
	"fmt"
	"sort"
	"strings"
)

// normalizeHoldingSymbol is the canonical symbol form used as a map key:
// surrounding whitespace stripped, letters uppercased.
func normalizeHoldingSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// SymbolPolicy decides which instrument symbols the engine accepts. A nil
// allow set means every non-empty symbol is accepted after normalization.
type SymbolPolicy struct {
	allowed map[string]struct{}
}

// NewSymbolPolicy builds a policy restricted to the given symbols. With no
// symbols the policy is unrestricted.
func NewSymbolPolicy(symbols ...string) *SymbolPolicy {
	if len(symbols) == 0 {
		return &SymbolPolicy{}
	}

	allowed := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		if sym := normalizeHoldingSymbol(s); sym != "" {
			allowed[sym] = struct{}{}
		}
	}

	return &SymbolPolicy{allowed: allowed}
}

// Normalize trims and uppercases symbol, rejecting empty or disallowed
// symbols.
func (p *SymbolPolicy) Normalize(symbol string) (string, error) {
	sym := normalizeHoldingSymbol(symbol)
	if sym == "" {
		return "", fmt.Errorf("%w: symbol must not be empty", ErrUnsupportedSymbol)
	}

	if p.allowed != nil {
		if _, ok := p.allowed[sym]; !ok {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedSymbol, sym)
		}
	}

	return sym, nil
}

// IsSupported reports whether symbol passes the policy.
func (p *SymbolPolicy) IsSupported(symbol string) bool {
	_, err := p.Normalize(symbol)
	return err == nil
}

// Symbols lists the allowed symbols in sorted order. Unrestricted policies
// return nil.
func (p *SymbolPolicy) Symbols() []string {
	if p.allowed == nil {
		return nil
	}

	out := make([]string, 0, len(p.allowed))
	for sym := range p.allowed {
		out = append(out, sym)
	}

	sort.Strings(out)

	return out
}

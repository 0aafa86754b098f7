package parser

import "strings"

// matchFunc inspects one trimmed line. It either claims the line and
// returns whatever update it carries, or declines so the next matcher
// in the chain runs. A claimed line with a zero update is terminally
// rejected rather than offered to later matchers.
type matchFunc func(line string) (Update, bool)

// Parser turns raw pad lines into structured updates. It is stateless
// apart from its configuration and safe for concurrent use.
type Parser struct {
	cfg      Config
	matchers []matchFunc
}

// New creates a parser with the given configuration.
func New(cfg Config) *Parser {
	p := &Parser{cfg: cfg}
	p.matchers = []matchFunc{
		matchEventObject,
		matchStateObject,
		matchTextCommand,
		p.matchSingleBinary,
		matchBinarySequence,
	}
	return p
}

// Parse inspects one raw line and returns the update it carries. The
// boolean reports whether the line produced an update; empty, malformed
// and unrecognised lines return false. Parse never fails: a line that
// cannot be understood is skipped, not surfaced as an error.
func (p *Parser) Parse(line string) (Update, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Update{}, false
	}
	for _, match := range p.matchers {
		upd, claimed := match(trimmed)
		if !claimed {
			continue
		}
		if upd.IsZero() {
			return Update{}, false
		}
		return upd, true
	}
	return Update{}, false
}

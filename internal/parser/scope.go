package parser

// scope tracks local variable names; a local followed by an argument-like
// token is a variable, not a command call. Hard scopes (def, class, module)
// hide outer locals, blocks see them.
type scope struct {
	vars map[string]struct{}
	hard bool
}

func (p *Parser) pushScope(hard bool) {
	p.scopes = append(p.scopes, scope{vars: make(map[string]struct{}), hard: hard})
}

func (p *Parser) popScope() {
	if len(p.scopes) > 0 {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
}

func (p *Parser) declare(name string) {
	if name == "" || len(p.scopes) == 0 {
		return
	}
	p.scopes[len(p.scopes)-1].vars[name] = struct{}{}
}

func (p *Parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if _, ok := p.scopes[i].vars[name]; ok {
			return true
		}
		if p.scopes[i].hard {
			return false
		}
	}
	return false
}

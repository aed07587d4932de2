package clause

// FunctionInfo describes a multi-clause function
type FunctionInfo struct {
	Name    string      `json:"name" yaml:"name"`
	Scope   string      `json:"scope,omitempty" yaml:"scope,omitempty"`
	Origin  string      `json:"origin,omitempty" yaml:"origin,omitempty"`
	Arities []ArityInfo `json:"arities" yaml:"arities"`
}

// ArityInfo describes the clauses of one arity in dispatch order
type ArityInfo struct {
	Arity   int          `json:"arity" yaml:"arity"`
	Clauses []ClauseInfo `json:"clauses" yaml:"clauses"`
}

// ClauseInfo describes one clause
type ClauseInfo struct {
	ID       string      `json:"id" yaml:"id"`
	Target   string      `json:"target" yaml:"target"`
	Mode     string      `json:"mode" yaml:"mode"`
	CatchAll bool        `json:"catch_all" yaml:"catch_all"`
	Guards   []GuardInfo `json:"guards" yaml:"guards"`
	Relation string      `json:"relation,omitempty" yaml:"relation,omitempty"`
}

// GuardInfo describes the guard of one parameter
type GuardInfo struct {
	Param string `json:"param" yaml:"param"`
	Type  string `json:"type" yaml:"type"`
	Guard string `json:"guard" yaml:"guard"`
}

// Describe returns a snapshot of the function's clauses
func (f *Function) Describe() FunctionInfo {
	info := FunctionInfo{
		Name:   f.key.Name,
		Scope:  f.key.Scope,
		Origin: f.Origin(),
	}

	for _, arity := range f.Arities() {
		ai := ArityInfo{Arity: arity}
		for _, c := range f.snapshot(arity) {
			ai.Clauses = append(ai.Clauses, c.Describe())
		}
		info.Arities = append(info.Arities, ai)
	}
	return info
}

// Describe returns a description of the clause
func (c *Clause) Describe() ClauseInfo {
	sig := c.guarded.Signature()
	info := ClauseInfo{
		ID:       c.ID.String(),
		Target:   c.guarded.Name(),
		Mode:     c.Mode.String(),
		CatchAll: c.CatchAll,
		Guards:   make([]GuardInfo, 0, len(sig.Params)),
	}
	for i, pg := range c.guarded.Guards() {
		typ := ""
		if t := sig.Params[i].Type; t != nil {
			typ = t.String()
		}
		info.Guards = append(info.Guards, GuardInfo{
			Param: pg.Name,
			Type:  typ,
			Guard: pg.Guard.String(),
		})
	}
	if r := c.guarded.Relation(); r != nil {
		info.Relation = r.String()
	}
	return info
}

package commands

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxDice  = 100
	maxSides = 1000
	maxTerms = 20
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
)

// rollDie returns a uniform value in [1, sides].
var rollDie = func(sides int) int { return rand.IntN(sides) + 1 }

type term struct {
	op       byte
	token    string
	count    int
	sides    int
	constant int
}

func (t term) dice() bool { return t.sides > 0 }

// Formula is a parsed dice expression like `2d6+1d4*2-3`.
type Formula struct {
	text  string
	terms []term
}

func (f Formula) String() string { return f.text }

// ParseFormula validates a dice expression. Whitespace is ignored.
func ParseFormula(s string) (Formula, error) {
	text := strings.Join(strings.Fields(s), "")
	if text == "" {
		return Formula{}, errors.New("formula is empty")
	}
	tokens := tokenRegex.FindAllString(text, -1)
	if strings.Join(tokens, "") != text {
		return Formula{}, errors.New("only dice like `2d6`, numbers and + - * / are allowed")
	}

	f := Formula{text: text}
	op := byte('+')
	expectOperand := true
	for i, tok := range tokens {
		if isOperator(tok) {
			if !expectOperand {
				op = tok[0]
				expectOperand = true
				continue
			}
			if i == 0 && (tok == "+" || tok == "-") {
				op = tok[0]
				continue
			}
			return Formula{}, fmt.Errorf("operator `%s` without left operand", tok)
		}
		if !expectOperand {
			return Formula{}, fmt.Errorf("missing operator before `%s`", tok)
		}
		t, err := parseTerm(tok)
		if err != nil {
			return Formula{}, fmt.Errorf("failed to evaluate `%s`: %w", tok, err)
		}
		if op == '/' && !t.dice() && t.constant == 0 {
			return Formula{}, errors.New("division by zero is forbidden, even in games")
		}
		t.op = op
		f.terms = append(f.terms, t)
		if len(f.terms) > maxTerms {
			return Formula{}, fmt.Errorf("too many terms, max %d", maxTerms)
		}
		expectOperand = false
	}
	if expectOperand {
		return Formula{}, errors.New("formula ends with an operator")
	}
	return f, nil
}

func isOperator(tok string) bool {
	return len(tok) == 1 && strings.ContainsAny(tok, "+-*/")
}

func parseTerm(tok string) (term, error) {
	if m := diceRegex.FindStringSubmatch(tok); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return term{}, errors.New("invalid dice count")
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return term{}, errors.New("invalid dice sides")
		}
		if count > maxDice || sides > maxSides {
			return term{}, fmt.Errorf("too big, max %d dice with %d sides", maxDice, maxSides)
		}
		return term{token: strings.ToLower(tok), count: count, sides: sides}, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return term{}, errors.New("not a number or dice")
	}
	return term{token: tok, constant: n}, nil
}

// Roll is one evaluation of a Formula.
type Roll struct {
	Total  int
	Detail string
}

// Roll evaluates the formula; * and / bind tighter than + and -.
func (f Formula) Roll(die func(sides int) int) Roll {
	type part struct {
		value int
		desc  string
		op    byte
	}
	var merged []part
	for _, t := range f.terms {
		v, desc := t.eval(die)
		if (t.op == '*' || t.op == '/') && len(merged) > 0 {
			prev := &merged[len(merged)-1]
			if t.op == '*' {
				prev.value *= v
			} else {
				prev.value /= v
			}
			prev.desc = fmt.Sprintf("%s %c %s", prev.desc, t.op, desc)
			continue
		}
		merged = append(merged, part{value: v, desc: desc, op: t.op})
	}

	var r Roll
	var sb strings.Builder
	for i, p := range merged {
		switch {
		case i > 0:
			fmt.Fprintf(&sb, " %c ", p.op)
		case p.op == '-':
			sb.WriteByte('-')
		}
		sb.WriteString(p.desc)
		if p.op == '-' {
			r.Total -= p.value
		} else {
			r.Total += p.value
		}
	}
	r.Detail = sb.String()
	return r
}

func (t term) eval(die func(int) int) (int, string) {
	if !t.dice() {
		return t.constant, fmt.Sprintf("`%d`", t.constant)
	}
	sum := 0
	rolls := make([]string, 0, t.count)
	for range t.count {
		n := die(t.sides)
		sum += n
		rolls = append(rolls, strconv.Itoa(n))
	}
	return sum, fmt.Sprintf("`%s` [%s]", t.token, strings.Join(rolls, ", "))
}

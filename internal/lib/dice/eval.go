package dice

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

type evaluator struct {
	rng      *rand.Rand
	crit     int
	critSeen bool
}

func (e *evaluator) eval(n node) (int, error) {
	switch n := n.(type) {
	case *numberNode:
		return n.value, nil
	case *parenNode:
		return e.eval(n.inner)
	case *unaryNode:
		v, err := e.eval(n.operand)
		return -v, err
	case *diceNode:
		return e.rollDice(n), nil
	case *binaryNode:
		left, err := e.eval(n.left)
		if err != nil {
			return 0, err
		}
		right, err := e.eval(n.right)
		if err != nil {
			return 0, err
		}
		switch n.op {
		case '+':
			return left + right, nil
		case '-':
			return left - right, nil
		case '*':
			return left * right, nil
		case '/':
			if right == 0 {
				return 0, ErrDivideByZero
			}
			return floorDiv(left, right), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown node %T", ErrSyntax, n)
}

func (e *evaluator) rollDice(d *diceNode) int {
	d.rolls = make([]int, d.count)
	d.kept = make([]bool, d.count)
	for i := range d.rolls {
		d.rolls[i] = rollDie(e.rng, d.sides)
		d.kept[i] = true
	}

	if d.keep != keepAll && d.keepN < d.count {
		order := make([]int, d.count)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			if d.keep == keepHighest {
				return d.rolls[order[a]] > d.rolls[order[b]]
			}
			return d.rolls[order[a]] < d.rolls[order[b]]
		})
		for _, idx := range order[d.keepN:] {
			d.kept[idx] = false
		}
	}

	total := 0
	fail, success := false, false
	for i, v := range d.rolls {
		if !d.kept[i] {
			continue
		}
		total += v
		if v == 1 {
			fail = true
		}
		if v == 20 {
			success = true
		}
	}

	if d.sides == 20 && !e.critSeen {
		e.critSeen = true
		switch {
		case fail:
			e.crit = CritFail
		case success:
			e.crit = CritSuccess
		}
	}

	return total
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func render(n node) string {
	var b strings.Builder
	renderTo(&b, n)
	return b.String()
}

func renderTo(b *strings.Builder, n node) {
	switch n := n.(type) {
	case *numberNode:
		b.WriteString(itoa(n.value))
	case *parenNode:
		b.WriteByte('(')
		renderTo(b, n.inner)
		b.WriteByte(')')
	case *unaryNode:
		b.WriteByte('-')
		renderTo(b, n.operand)
	case *binaryNode:
		renderTo(b, n.left)
		b.WriteByte(' ')
		b.WriteByte(n.op)
		b.WriteByte(' ')
		renderTo(b, n.right)
	case *diceNode:
		b.WriteString(itoa(n.count))
		b.WriteByte('d')
		b.WriteString(itoa(n.sides))
		switch n.keep {
		case keepHighest:
			b.WriteString("kh" + itoa(n.keepN))
		case keepLowest:
			b.WriteString("kl" + itoa(n.keepN))
		}
		b.WriteString(" (")
		for i, v := range n.rolls {
			if i > 0 {
				b.WriteString(", ")
			}
			s := itoa(v)
			if v == 1 || v == n.sides {
				s = "**" + s + "**"
			}
			if !n.kept[i] {
				s = "~~" + s + "~~"
			}
			b.WriteString(s)
		}
		b.WriteByte(')')
	}
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

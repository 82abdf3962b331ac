package roll

import (
	"fmt"
	"rollhook-bot/internal/core/model"
	"rollhook-bot/internal/lib/dice"
)

// Engine вычисляет выражение кубов вместе с комментарием в конце.
type Engine interface {
	Roll(expression string) (dice.Result, error)
}

type Evaluator struct {
	engine Engine
}

func NewEvaluator(engine Engine) *Evaluator {
	return &Evaluator{engine: engine}
}

// Evaluate вычисляет один токен. Ошибка движка заворачивается в
// model.ErrInvalidExpression вместе с текстом токена.
func (e *Evaluator) Evaluate(token string) (model.RollOutcome, error) {
	result, err := e.engine.Roll(token)
	if err != nil {
		return model.RollOutcome{}, fmt.Errorf("%w: [[%s]]: %v", model.ErrInvalidExpression, token, err)
	}

	crit := model.CritNone
	switch result.Crit {
	case dice.CritFail:
		crit = model.CritFail
	case dice.CritSuccess:
		crit = model.CritSuccess
	}

	return model.RollOutcome{
		Token:      token,
		Total:      result.Total,
		Crit:       crit,
		Comment:    result.Comment,
		Expression: result.Expression,
		Rendered:   result.String(),
	}, nil
}

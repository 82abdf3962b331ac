package model

// CritTier 0 обычный бросок, 1 критический успех, 2 критический провал.
type CritTier int

const (
	CritNone    CritTier = 0
	CritSuccess CritTier = 1
	CritFail    CritTier = 2
)

// RollOutcome результат одного инлайн-броска. После вычисления не меняется.
type RollOutcome struct {
	// Token текст между [[ и ]] как он был в сообщении
	Token   string
	Total   int
	Crit    CritTier
	Comment string
	// Expression выражение с выпавшими значениями, "1d20 (15) + 2"
	Expression string
	// Rendered полная строка движка, "1d20 (15) + 2 = `17`"
	Rendered string
}

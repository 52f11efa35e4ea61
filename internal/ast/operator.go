package ast

type Operator uint8

const (
	OperatorNone Operator = iota
	OperatorOr
	OperatorAnd
	OperatorNot
	OperatorEqual
	OperatorNotEqual
	OperatorLess
	OperatorLessEqual
	OperatorGreater
	OperatorGreaterEqual
	OperatorAdd
	OperatorSubtract
	OperatorMultiply
	OperatorDivide
	OperatorModulo
	OperatorNegate
)

var operatorText = map[Operator]string{
	OperatorOr:           "or",
	OperatorAnd:          "and",
	OperatorNot:          "not",
	OperatorEqual:        "==",
	OperatorNotEqual:     "!=",
	OperatorLess:         "<",
	OperatorLessEqual:    "<=",
	OperatorGreater:      ">",
	OperatorGreaterEqual: ">=",
	OperatorAdd:          "+",
	OperatorSubtract:     "-",
	OperatorMultiply:     "*",
	OperatorDivide:       "/",
	OperatorModulo:       "%",
	OperatorNegate:       "-",
}

func (o Operator) String() string {
	if text, ok := operatorText[o]; ok {
		return text
	}
	return "?"
}

var binaryOperators = map[string]Operator{
	"or":  OperatorOr,
	"and": OperatorAnd,
	"==":  OperatorEqual,
	"!=":  OperatorNotEqual,
	"<":   OperatorLess,
	"<=":  OperatorLessEqual,
	">":   OperatorGreater,
	">=":  OperatorGreaterEqual,
	"+":   OperatorAdd,
	"-":   OperatorSubtract,
	"*":   OperatorMultiply,
	"/":   OperatorDivide,
	"%":   OperatorModulo,
}

var unaryOperators = map[string]Operator{
	"not": OperatorNot,
	"-":   OperatorNegate,
}

// IsArithmetic reports whether o takes and yields numbers. Addition is not
// included because it also joins strings.
func (o Operator) IsArithmetic() bool {
	switch o {
	case OperatorSubtract, OperatorMultiply, OperatorDivide, OperatorModulo:
		return true
	}
	return false
}

// IsOrdering reports whether o is one of < <= > >=.
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorLess, OperatorLessEqual, OperatorGreater, OperatorGreaterEqual:
		return true
	}
	return false
}

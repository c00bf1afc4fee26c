package parser

var KEYWORDS = map[string]TokenType{
	"while":   WHILE,
	"if":      IF,
	"else":    ELSE,
	"print":   PRINT,
	"println": PRINTLN,
	"exit":    EXIT,
	"input":   INPUT,
}

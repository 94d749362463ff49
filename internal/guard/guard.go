// Package guard classifies questions by keyword. IsIslamicFinance gates answer
// generation; IsScholarQuestion gates web search.
package guard

import "github.com/hyperjump/sanad/pkg/utils"

// Classifier reports whether a question belongs to a category.
type Classifier func(question string) bool

// TopicKeywords is the Islamic finance vocabulary. A question matching none of
// them is declined without calling the model.
var TopicKeywords = []string{
	"riba", "interest", "zakat", "sukuk", "murabaha", "ijara", "musharaka",
	"mudaraba", "halal", "haram", "sharia", "shariah", "islamic finance",
	"islamic banking", "profit", "loss", "trade", "contract", "loan",
	"mortgage", "investment", "takaful", "insurance", "quran", "hadith",
	"aaoifi", "fiqh", "fatwa", "finance", "bank", "money", "debt",
	"transaction", "sale", "purchase", "exchange", "commodity",
}

// ScholarKeywords mark questions asking for rulings or scholar opinions.
var ScholarKeywords = []string{
	"fatwa", "fatawa", "ruling", "scholar", "scholars", "mufti", "opinion",
	"permissible", "impermissible", "is it halal", "is it haram",
	"is it allowed", "is it permissible", "allowed in islam", "islamqa",
	"madhab", "madhhab", "fiqh council", "sharia board", "shariah board",
	"usmani", "view of",
}

// IsIslamicFinance reports whether question mentions any topic keyword, case-insensitively.
func IsIslamicFinance(question string) bool {
	return utils.ContainsAny(question, TopicKeywords)
}

// IsScholarQuestion reports whether question asks about rulings or scholar views.
func IsScholarQuestion(question string) bool {
	return utils.ContainsAny(question, ScholarKeywords)
}

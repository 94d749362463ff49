package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIslamicFinance(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"What is Murabaha and how does it work?", true},
		{"Is RIBA forbidden?", true},
		{"How is zakat calculated on gold?", true},
		{"Explain Islamic Banking", true},
		{"What does the Quran say about debt?", true},
		{"What is the capital of France?", false},
		{"Write me a poem about the sea", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsIslamicFinance(tt.question), tt.question)
	}
}

func TestIsScholarQuestion(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"Is it permissible to take a mortgage?", true},
		{"What is the fatwa on crypto?", true},
		{"What do scholars say about sukuk?", true},
		{"Mufti Taqi USMANI on tawarruq", true},
		{"What is the view of the Hanafi madhab?", true},
		{"What is Murabaha?", false},
		{"What is the capital of France?", false},
		{"How is zakat calculated?", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsScholarQuestion(tt.question), tt.question)
	}
}

func TestClassifierType(t *testing.T) {
	var c Classifier = IsScholarQuestion
	assert.True(t, c("any ruling?"))
}

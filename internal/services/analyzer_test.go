package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeContentCountsLinesAndWords(t *testing.T) {
	report := AnalyzeContent("one two three\nfour five\n")
	assert.Equal(t, 2, report.Lines)
	assert.Equal(t, 5, report.Words)
	assert.False(t, report.IsCSV)
}

func TestAnalyzeContentHandlesMissingTrailingNewline(t *testing.T) {
	report := AnalyzeContent("a\nb\nc")
	assert.Equal(t, 3, report.Lines)
}

func TestAnalyzeContentEmpty(t *testing.T) {
	report := AnalyzeContent("")
	assert.Equal(t, 0, report.Lines)
	assert.Equal(t, 0, report.Words)
	assert.Equal(t, 0, report.PII.Emails)
}

func TestAnalyzeContentFindsEmails(t *testing.T) {
	report := AnalyzeContent("contact alice@example.com or bob.smith+tag@corp.co.uk today")
	assert.Equal(t, 2, report.PII.Emails)
}

func TestAnalyzeContentFindsPhones(t *testing.T) {
	report := AnalyzeContent("call +1 (415) 555-0137 or 020 7946 0958")
	assert.Equal(t, 2, report.PII.Phones)
}

func TestAnalyzeContentCardNumbersRequireLuhn(t *testing.T) {
	// 4111111111111111 passes the Luhn check, 4111111111111112 does not.
	valid := AnalyzeContent("card: 4111 1111 1111 1111")
	assert.Equal(t, 1, valid.PII.CardNumbers)

	invalid := AnalyzeContent("card: 4111 1111 1111 1112")
	assert.Equal(t, 0, invalid.PII.CardNumbers)
}

func TestAnalyzeContentCardNumberNotDoubleCountedAsPhone(t *testing.T) {
	report := AnalyzeContent("4111111111111111")
	assert.Equal(t, 1, report.PII.CardNumbers)
	assert.Equal(t, 0, report.PII.Phones)
}

func TestAnalyzeContentDetectsCSV(t *testing.T) {
	csv := "name,age,city\nalice,30,berlin\nbob,,paris\ncarol,41.5,\n"
	report := AnalyzeContent(csv)
	require.True(t, report.IsCSV)
	require.Len(t, report.Columns, 3)

	age := report.Columns[1]
	assert.Equal(t, "age", age.Name)
	assert.Equal(t, 3, age.TotalCount)
	assert.Equal(t, 2, age.NumericCount)
	assert.Equal(t, 1, age.EmptyCount)

	city := report.Columns[2]
	assert.Equal(t, 1, city.EmptyCount)
	assert.Equal(t, 0, city.NumericCount)
}

func TestAnalyzeContentProseIsNotCSV(t *testing.T) {
	report := AnalyzeContent("hello, world\nthis is prose, not a table, at all\n")
	assert.False(t, report.IsCSV)
}

func TestLuhnValid(t *testing.T) {
	assert.True(t, luhnValid("4111111111111111"))
	assert.True(t, luhnValid("5500 0000 0000 0004"))
	assert.False(t, luhnValid("4111111111111112"))
	assert.False(t, luhnValid("1234"))
}
